package state

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Menu is the user's current position in the reply-keyboard menu tree.
type Menu int

const (
	MenuHome Menu = iota
	MenuGameLevel1
	MenuGameLevel2
	MenuProfile
	MenuSecurityCenter
	MenuPersonalReport
	MenuDailyReport
	MenuMonthlyReport
	MenuBeginnerRoomBetting
	MenuAutoBetAmountSelection
	MenuAutoBetCountSelection
	MenuAutoBetStopping
)

func (m Menu) String() string {
	switch m {
	case MenuHome:
		return "home"
	case MenuGameLevel1:
		return "game_level1"
	case MenuGameLevel2:
		return "game_level2"
	case MenuProfile:
		return "profile"
	case MenuSecurityCenter:
		return "security_center"
	case MenuPersonalReport:
		return "personal_report"
	case MenuDailyReport:
		return "daily_report"
	case MenuMonthlyReport:
		return "monthly_report"
	case MenuBeginnerRoomBetting:
		return "beginner_room_betting"
	case MenuAutoBetAmountSelection:
		return "auto_bet_amount_selection"
	case MenuAutoBetCountSelection:
		return "auto_bet_count_selection"
	case MenuAutoBetStopping:
		return "auto_bet_stopping"
	}
	return "unknown"
}

// BetSource identifies which room a bet was placed from.
type BetSource int

const (
	SourceNone BetSource = iota
	SourceHashWheel
	SourceBeginnerRoom
)

// WithdrawStep tracks the three-step withdrawal dialogue.
type WithdrawStep int

const (
	WithdrawNone WithdrawStep = iota
	WithdrawSelectMethod
	WithdrawEnterAmount
	WithdrawEnterPassword
)

// WalletKind names a bound withdrawal wallet network.
type WalletKind int

const (
	WalletNone WalletKind = iota
	WalletTRC20
	WalletERC20
)

// PasswordStep tracks the withdraw-password PIN pad dialogue.
type PasswordStep int

const (
	PasswordNone PasswordStep = iota
	PasswordInputting
	PasswordConfirming
)

// User is the complete per-user session record. All access goes through
// Store, which copies on read and locks on write.
type User struct {
	Menu     Menu
	PrevMenu Menu

	Source     BetSource
	AutoAmount decimal.Decimal
	AutoCount  int
	Continuous bool

	Depositing     bool
	WithdrawStep   WithdrawStep
	WithdrawMethod string
	WithdrawAmount decimal.Decimal
	AwaitingCard   bool
	AwaitingWallet WalletKind
	PasswordStep   PasswordStep
	PasswordBuffer string
	PasswordFirst  string

	WithdrawPassword string
	BankCard         string
	WalletTRC20      string
	WalletERC20      string

	ReportDate  time.Time
	ReportMonth time.Time
	ReportGame  string
	ReportMsgID int

	PlatformUser     string
	PlatformPassword string
	LoggedIn         bool
}

// Store owns every user record behind one lock.
type Store struct {
	mu    sync.RWMutex
	users map[int64]*User
}

func NewStore() *Store {
	return &Store{users: make(map[int64]*User)}
}

func (s *Store) get(id int64) *User {
	u, ok := s.users[id]
	if !ok {
		u = &User{Menu: MenuHome, PrevMenu: MenuHome}
		s.users[id] = u
	}
	return u
}

// Get returns a snapshot of the user's record.
func (s *Store) Get(id int64) User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return *u
	}
	return User{Menu: MenuHome, PrevMenu: MenuHome}
}

// Update applies fn to the user's record under the write lock.
func (s *Store) Update(id int64, fn func(*User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.get(id))
}

// Menu returns the user's current menu state.
func (s *Store) Menu(id int64) Menu {
	return s.Get(id).Menu
}

// SetMenu moves the user to m, remembering the state they came from.
// Only one level of history is kept.
func (s *Store) SetMenu(id int64, m Menu) {
	s.Update(id, func(u *User) {
		if u.Menu != m {
			u.PrevMenu = u.Menu
		}
		u.Menu = m
	})
}

// ResetFlows cancels every in-progress dialogue (deposit, withdraw, card
// and wallet binding, password entry) without touching stored bindings,
// the stored password, or the menu position.
func ResetFlows(u *User) {
	u.Depositing = false
	u.WithdrawStep = WithdrawNone
	u.WithdrawMethod = ""
	u.WithdrawAmount = decimal.Zero
	u.AwaitingCard = false
	u.AwaitingWallet = WalletNone
	u.PasswordStep = PasswordNone
	u.PasswordBuffer = ""
	u.PasswordFirst = ""
}

// ClearCampaign drops the auto-bet parameters after a campaign ends or is
// cancelled.
func ClearCampaign(u *User) {
	u.AutoAmount = decimal.Zero
	u.AutoCount = 0
	u.Continuous = false
}
