package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record holds the fields every stored entity carries
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Record) GetID() string { return r.ID }

func (r *Record) SetID(id string) { r.ID = id }

// Stamp sets both timestamps on creation
func (r *Record) Stamp(t time.Time) {
	r.CreatedAt = t
	r.UpdatedAt = t
}

func (r *Record) Touch(t time.Time) { r.UpdatedAt = t }

func (r *Record) Created() time.Time { return r.CreatedAt }

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusProspect ClientStatus = "prospect"
)

// Client is a customer of the business
type Client struct {
	Record
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Company  string       `json:"company,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	WhatsApp string       `json:"whatsapp,omitempty"`
	Address  string       `json:"address,omitempty"`
	Notes    string       `json:"notes,omitempty"`
	Status   ClientStatus `json:"status"`
	// Derived from the client's projects; never set from request bodies
	TotalProjects int             `json:"totalProjects"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
	ProjectStatusOnHold     ProjectStatus = "on-hold"
)

// IsClosed reports whether the project no longer has an active deadline
func (s ProjectStatus) IsClosed() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

// Priority is shared by projects and notifications
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Milestone is a dated checkpoint inside a project
type Milestone struct {
	Title     string     `json:"title"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed bool       `json:"completed"`
}

// Project is a piece of work for a client
type Project struct {
	Record
	Title       string          `json:"title"`
	ClientID    string          `json:"clientId"`
	Description string          `json:"description,omitempty"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      ProjectStatus   `json:"status"`
	Priority    Priority        `json:"priority"`
	Progress    int             `json:"progress"`
	Tags        []string        `json:"tags"`
	Milestones  []Milestone     `json:"milestones"`
	// Set on the first transition into completed and never cleared
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

// IsOverdue reports whether the deadline has passed on an open project
func (p *Project) IsOverdue(now time.Time) bool {
	return p.EndDate != nil && p.EndDate.Before(now) && !p.Status.IsClosed()
}

// InvoiceStatus is the stored invoice state. InvoiceStatusOverdue is only
// ever derived at read time and is never persisted.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceItem is a single billed line
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice bills a client, optionally for a project. Monetary fields keep
// full precision; rounding happens when mapping to responses.
type Invoice struct {
	Record
	InvoiceNumber  string          `json:"invoiceNumber"`
	ClientID       string          `json:"clientId"`
	ProjectID      string          `json:"projectId,omitempty"`
	Items          []InvoiceItem   `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Tax            decimal.Decimal `json:"tax"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
	Status         InvoiceStatus   `json:"status"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	SentDate       *time.Time      `json:"sentDate,omitempty"`
	PaidDate       *time.Time      `json:"paidDate,omitempty"`
}

// NotificationType enumerates the events that produce notifications
type NotificationType string

const (
	NotificationClientAdded      NotificationType = "client_added"
	NotificationProjectCreated   NotificationType = "project_created"
	NotificationProjectCompleted NotificationType = "project_completed"
	NotificationDeadlineReminder NotificationType = "deadline_reminder"
	NotificationProjectOverdue   NotificationType = "project_overdue"
	NotificationInvoiceGenerated NotificationType = "invoice_generated"
	NotificationInvoiceOverdue   NotificationType = "invoice_overdue"
	NotificationPaymentReceived  NotificationType = "payment_received"
	NotificationSystemAlert      NotificationType = "system_alert"
)

// NotificationStatus tracks whether the user has seen a notification
type NotificationStatus string

const (
	NotificationStatusUnread   NotificationStatus = "unread"
	NotificationStatusRead     NotificationStatus = "read"
	NotificationStatusArchived NotificationStatus = "archived"
)

// ChannelDelivery records one delivery attempt on one channel
type ChannelDelivery struct {
	Attempted bool       `json:"attempted"`
	Succeeded bool       `json:"succeeded"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NotificationChannels holds the delivery record per external channel
type NotificationChannels struct {
	Email    ChannelDelivery `json:"email"`
	WhatsApp ChannelDelivery `json:"whatsapp"`
}

// Notification is an in-app message, optionally forwarded to external channels
type Notification struct {
	Record
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	ClientID  string               `json:"clientId,omitempty"`
	ProjectID string               `json:"projectId,omitempty"`
	InvoiceID string               `json:"invoiceId,omitempty"`
	Priority  Priority             `json:"priority"`
	Status    NotificationStatus   `json:"status"`
	Channels  NotificationChannels `json:"channels"`
	ReadAt    *time.Time           `json:"readAt,omitempty"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// UserRole controls access to administrative endpoints
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an account that can sign in to the API
type User struct {
	Record
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"passwordHash"`
	Role         UserRole `json:"role"`
}
