package state

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultMenuIsHome(t *testing.T) {
	s := NewStore()
	if got := s.Menu(1); got != MenuHome {
		t.Fatalf("menu = %v, want home", got)
	}
}

func TestSetMenuRecordsPrevious(t *testing.T) {
	s := NewStore()
	s.SetMenu(1, MenuGameLevel1)
	s.SetMenu(1, MenuGameLevel2)

	u := s.Get(1)
	if u.Menu != MenuGameLevel2 {
		t.Fatalf("menu = %v, want game_level2", u.Menu)
	}
	if u.PrevMenu != MenuGameLevel1 {
		t.Fatalf("prev menu = %v, want game_level1", u.PrevMenu)
	}
}

func TestSetMenuSameStateKeepsPrevious(t *testing.T) {
	s := NewStore()
	s.SetMenu(1, MenuProfile)
	s.SetMenu(1, MenuProfile)
	if got := s.Get(1).PrevMenu; got != MenuHome {
		t.Fatalf("prev menu = %v, want home", got)
	}
}

func TestSingleLevelHistory(t *testing.T) {
	s := NewStore()
	s.SetMenu(1, MenuGameLevel1)
	s.SetMenu(1, MenuGameLevel2)
	s.SetMenu(1, MenuBeginnerRoomBetting)
	// Only the immediate predecessor survives.
	if got := s.Get(1).PrevMenu; got != MenuGameLevel2 {
		t.Fatalf("prev menu = %v, want game_level2", got)
	}
}

func TestResetFlowsKeepsStoredSecrets(t *testing.T) {
	s := NewStore()
	s.Update(1, func(u *User) {
		u.Depositing = true
		u.WithdrawStep = WithdrawEnterAmount
		u.AwaitingCard = true
		u.PasswordStep = PasswordConfirming
		u.PasswordBuffer = "12"
		u.PasswordFirst = "1234"
		u.WithdrawPassword = "1234"
		u.BankCard = "6222021234567890"
	})
	s.Update(1, func(u *User) { ResetFlows(u) })

	u := s.Get(1)
	if u.Depositing || u.AwaitingCard || u.WithdrawStep != WithdrawNone || u.PasswordStep != PasswordNone {
		t.Fatalf("flows not cleared: %+v", u)
	}
	if u.PasswordBuffer != "" || u.PasswordFirst != "" {
		t.Fatal("scratch buffers not cleared")
	}
	if u.WithdrawPassword != "1234" || u.BankCard != "6222021234567890" {
		t.Fatal("stored secrets must survive a flow reset")
	}
}

func TestClearCampaign(t *testing.T) {
	s := NewStore()
	s.Update(1, func(u *User) {
		u.AutoAmount = decimal.NewFromInt(10)
		u.AutoCount = 50
		u.Continuous = true
	})
	s.Update(1, func(u *User) { ClearCampaign(u) })

	u := s.Get(1)
	if !u.AutoAmount.IsZero() || u.AutoCount != 0 || u.Continuous {
		t.Fatalf("campaign fields not cleared: %+v", u)
	}
}

func TestUsersIsolated(t *testing.T) {
	s := NewStore()
	s.SetMenu(1, MenuGameLevel1)
	if got := s.Menu(2); got != MenuHome {
		t.Fatalf("user 2 menu = %v, want home", got)
	}
}
