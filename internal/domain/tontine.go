package domain

// ============================================================
// Members
// ============================================================

// UserStatus is the lifecycle status of a tontine member.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// KYCStatus tracks the identity-verification workflow.
type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// User is a tontine member as exposed by the data collaborator.
type User struct {
	ID                 string     `json:"id"`
	FullName           string     `json:"fullName"`
	Status             UserStatus `json:"status"`
	JoinDate           string     `json:"joinDate"` // YYYY-MM-DD
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	KYCStatus          KYCStatus  `json:"kycStatus"`
	TontineBeneficiary bool       `json:"tontineBeneficiary"`
}

// IsActive reports whether the member is expected to contribute.
func (u User) IsActive() bool {
	return u.Status == UserActive
}

// ============================================================
// Transactions
// ============================================================

// TransactionType enumerates the kinds of ledger events.
type TransactionType string

const (
	TxDeposit         TransactionType = "deposit"
	TxWithdrawal      TransactionType = "withdrawal"
	TxLoanEligibility TransactionType = "loan_eligibility"
	TxStatusChange    TransactionType = "status_change"
)

// Monetary reports whether the amount of this type carries value.
func (t TransactionType) Monetary() bool {
	return t == TxDeposit || t == TxWithdrawal
}

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	TxSuccess TransactionStatus = "success"
	TxPending TransactionStatus = "pending"
	TxFailed  TransactionStatus = "failed"
)

// Transaction is a single ledger event. Date is "YYYY-MM-DD", optionally
// followed by a space and a time of day ("YYYY-MM-DD HH:MM").
type Transaction struct {
	ID       string            `json:"id"`
	UserID   string            `json:"userId"`
	UserName string            `json:"userName"`
	Type     TransactionType   `json:"type"`
	Amount   int64             `json:"amount"` // FC, integer unit
	Status   TransactionStatus `json:"status"`
	Date     string            `json:"date"`
	Reason   string            `json:"reason,omitempty"`
}

// Succeeded reports whether the transaction settled.
func (t Transaction) Succeeded() bool {
	return t.Status == TxSuccess
}

// ============================================================
// Groups
// ============================================================

// Group is a tontine: members contribute toward TargetAmount and take turns
// receiving the pool. Members is ordered; MemberCount mirrors its length.
type Group struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	TargetAmount int64    `json:"targetAmount"`
	MemberCount  int      `json:"memberCount"`
	CreatedAt    string   `json:"createdAt"`
	Members      []string `json:"members"`
}

// HasMember reports whether userID belongs to the group.
func (g Group) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// GroupRequest is the body for POST/PUT /v1/admin/groups.
type GroupRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	TargetAmount int64  `json:"targetAmount"`
}

// MemberRequest is the body for POST /v1/admin/groups/{groupId}/members.
type MemberRequest struct {
	UserID string `json:"userId"`
}

// DepositRequest is the body for POST /v1/admin/deposits.
type DepositRequest struct {
	UserID string `json:"userId"`
	Amount int64  `json:"amount"`
}

// ============================================================
// Messages
// ============================================================

// Message is an admin notification sent to a member.
type Message struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// MessageRequest is the body for POST /v1/admin/users/{userId}/messages.
type MessageRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Snapshot is one consistent read of the collaborator's lists.
type Snapshot struct {
	Users        []User
	Groups       []Group
	Transactions []Transaction
}
