package bot

import "sync"

// Session is the transient per-user conversation state. Exactly one flow is
// active per user; entering a flow overwrites whatever was mid-progress, and
// Cancel or terminal completion clears it. Sessions live in memory only and
// do not survive a restart.
type Session interface {
	flowName() string
}

// Top-up flow: SelectPackage → ChoosePaymentMethod → AwaitReceipt.
type TopUpState int

const (
	TopUpSelectPackage TopUpState = iota
	TopUpChoosePaymentMethod
	TopUpAwaitReceipt
)

type TopUpSession struct {
	State         TopUpState
	PackageAmount int64
}

func (*TopUpSession) flowName() string { return "topup" }

// Purchase flow: ProductChosen → SelectPrice → AwaitPhone → AwaitUsername.
type PurchaseState int

const (
	PurchaseProductChosen PurchaseState = iota
	PurchaseSelectPrice
	PurchaseAwaitPhone
	PurchaseAwaitUsername
)

type PurchaseSession struct {
	State          PurchaseState
	ProductKey     string
	PriceAmount    int64 // source currency
	CoinPrice      int64
	Phone          string
	TargetUsername string
}

func (*PurchaseSession) flowName() string { return "purchase" }

// Cash-control flow (admin): AwaitTargetIdentifier → AwaitAmountDelta.
type CashControlState int

const (
	CashControlAwaitTarget CashControlState = iota
	CashControlAwaitDelta
)

type CashControlSession struct {
	State    CashControlState
	TargetID int64
}

func (*CashControlSession) flowName() string { return "cashcontrol" }

// Search flow (admin): one AwaitQuery state.
type SearchSession struct{}

func (*SearchSession) flowName() string { return "search" }

// Broadcast flow (admin): AwaitContent → AwaitConfirmation.
type BroadcastState int

const (
	BroadcastAwaitContent BroadcastState = iota
	BroadcastAwaitConfirmation
)

type BroadcastSession struct {
	State BroadcastState
	Draft string
}

func (*BroadcastSession) flowName() string { return "broadcast" }

// Sessions is the in-memory per-user session map, safe for concurrent
// handlers.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]Session)}
}

// Get returns the active session for the user, or nil.
func (s *Sessions) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

// Set replaces the user's session; a flow re-entry overwrites deliberately.
func (s *Sessions) Set(userID int64, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = session
}

// Clear discards all collected fields for the user.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
