package domain

import (
	"github.com/shopspring/decimal"
)

// Response DTOs. Money is rounded to two places and dates are ISO 8601 strings.

type ClientDTO struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	Company       string       `json:"company,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	WhatsApp      string       `json:"whatsapp,omitempty"`
	Address       string       `json:"address,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Status        ClientStatus `json:"status"`
	TotalProjects int          `json:"totalProjects"`
	TotalRevenue  float64      `json:"totalRevenue"`
	CreatedAt     string       `json:"createdAt"`
	UpdatedAt     string       `json:"updatedAt"`
}

// ClientDetailDTO is a client together with its projects and invoices
type ClientDetailDTO struct {
	ClientDTO
	Projects []ProjectDTO `json:"projects"`
	Invoices []InvoiceDTO `json:"invoices"`
}

type MilestoneDTO struct {
	Title     string `json:"title"`
	DueDate   string `json:"dueDate,omitempty"`
	Completed bool   `json:"completed"`
}

type ProjectDTO struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	ClientID      string         `json:"clientId"`
	ClientName    string         `json:"clientName,omitempty"`
	Description   string         `json:"description,omitempty"`
	StartDate     string         `json:"startDate,omitempty"`
	EndDate       string         `json:"endDate,omitempty"`
	Amount        float64        `json:"amount"`
	Status        ProjectStatus  `json:"status"`
	Priority      Priority       `json:"priority"`
	Progress      int            `json:"progress"`
	Tags          []string       `json:"tags"`
	Milestones    []MilestoneDTO `json:"milestones"`
	CompletedDate string         `json:"completedDate,omitempty"`
	IsOverdue     bool           `json:"isOverdue"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

type InvoiceItemDTO struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type InvoiceDTO struct {
	ID             string           `json:"id"`
	InvoiceNumber  string           `json:"invoiceNumber"`
	ClientID       string           `json:"clientId"`
	ClientName     string           `json:"clientName,omitempty"`
	ProjectID      string           `json:"projectId,omitempty"`
	Items          []InvoiceItemDTO `json:"items"`
	Subtotal       float64          `json:"subtotal"`
	Discount       float64          `json:"discount"`
	DiscountAmount float64          `json:"discountAmount"`
	Tax            float64          `json:"tax"`
	TaxAmount      float64          `json:"taxAmount"`
	Total          float64          `json:"total"`
	// Status is the effective status, so an unpaid invoice past due reads as overdue
	Status     InvoiceStatus `json:"status"`
	DueDate    string        `json:"dueDate,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	PaidAmount float64       `json:"paidAmount"`
	SentDate   string        `json:"sentDate,omitempty"`
	PaidDate   string        `json:"paidDate,omitempty"`
	CreatedAt  string        `json:"createdAt"`
	UpdatedAt  string        `json:"updatedAt"`
}

type ChannelDeliveryDTO struct {
	Attempted bool   `json:"attempted"`
	Succeeded bool   `json:"succeeded"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

type NotificationDTO struct {
	ID        string                        `json:"id"`
	Type      NotificationType              `json:"type"`
	Title     string                        `json:"title"`
	Message   string                        `json:"message"`
	ClientID  string                        `json:"clientId,omitempty"`
	ProjectID string                        `json:"projectId,omitempty"`
	InvoiceID string                        `json:"invoiceId,omitempty"`
	Priority  Priority                      `json:"priority"`
	Status    NotificationStatus            `json:"status"`
	Channels  map[string]ChannelDeliveryDTO `json:"channels"`
	ReadAt    string                        `json:"readAt,omitempty"`
	ExpiresAt string                        `json:"expiresAt"`
	CreatedAt string                        `json:"createdAt"`
}

type UserDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"createdAt"`
}

// PageInfo is embedded in every paginated list response
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPageInfo computes page metadata. total may be zero, which yields zero pages.
func NewPageInfo(page, limit, total int) PageInfo {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

type ClientPagination struct {
	PageInfo
	TotalClients int `json:"totalClients"`
}

type ClientListResponse struct {
	Clients    []ClientDTO      `json:"clients"`
	Pagination ClientPagination `json:"pagination"`
}

type ProjectPagination struct {
	PageInfo
	TotalProjects int `json:"totalProjects"`
}

type ProjectListResponse struct {
	Projects   []ProjectDTO      `json:"projects"`
	Pagination ProjectPagination `json:"pagination"`
}

type InvoicePagination struct {
	PageInfo
	TotalInvoices int `json:"totalInvoices"`
}

type InvoiceListResponse struct {
	Invoices   []InvoiceDTO      `json:"invoices"`
	Pagination InvoicePagination `json:"pagination"`
}

type NotificationPagination struct {
	PageInfo
	TotalNotifications int `json:"totalNotifications"`
}

type NotificationListResponse struct {
	Notifications []NotificationDTO      `json:"notifications"`
	Pagination    NotificationPagination `json:"pagination"`
	UnreadCount   int                    `json:"unreadCount"`
}

type NotificationCountDTO struct {
	Unread int `json:"unread"`
	Total  int `json:"total"`
}

// Statistics

type ClientStatsDTO struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
	Prospect int `json:"prospect"`
}

type ProjectStatsDTO struct {
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	InProgress int     `json:"inProgress"`
	Completed  int     `json:"completed"`
	Cancelled  int     `json:"cancelled"`
	OnHold     int     `json:"onHold"`
	Overdue    int     `json:"overdue"`
	TotalValue float64 `json:"totalValue"`
}

type InvoiceStatsDTO struct {
	Total         int     `json:"total"`
	Draft         int     `json:"draft"`
	Sent          int     `json:"sent"`
	Paid          int     `json:"paid"`
	Overdue       int     `json:"overdue"`
	Cancelled     int     `json:"cancelled"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingAmount float64 `json:"pendingAmount"`
}

type DashboardStatsDTO struct {
	Clients             ClientStatsDTO  `json:"clients"`
	Projects            ProjectStatsDTO `json:"projects"`
	Invoices            InvoiceStatsDTO `json:"invoices"`
	TotalRevenue        float64         `json:"totalRevenue"`
	PendingAmount       float64         `json:"pendingAmount"`
	UnreadNotifications int             `json:"unreadNotifications"`
}

// CalendarEventType identifies what a calendar entry refers to
type CalendarEventType string

const (
	CalendarProjectDeadline CalendarEventType = "project_deadline"
	CalendarMilestone       CalendarEventType = "milestone"
	CalendarInvoiceDue      CalendarEventType = "invoice_due"
)

type CalendarEventDTO struct {
	Type      CalendarEventType `json:"type"`
	Date      string            `json:"date"`
	Title     string            `json:"title"`
	ClientID  string            `json:"clientId,omitempty"`
	ProjectID string            `json:"projectId,omitempty"`
	InvoiceID string            `json:"invoiceId,omitempty"`
	Status    string            `json:"status,omitempty"`
}

type CalendarResponse struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Events []CalendarEventDTO `json:"events"`
}

// SweepResultDTO reports a manually triggered reminder sweep
type SweepResultDTO struct {
	Job                  string `json:"job"`
	Scanned              int    `json:"scanned"`
	NotificationsCreated int    `json:"notificationsCreated"`
	Deleted              int    `json:"deleted"`
	ChannelFailures      int    `json:"channelFailures"`
	Errors               int    `json:"errors"`
}

// Request DTOs

type CreateClientRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Email    string       `json:"email" validate:"required,email,max=254"`
	Company  string       `json:"company,omitempty" validate:"max=200"`
	Phone    string       `json:"phone,omitempty" validate:"max=50"`
	WhatsApp string       `json:"whatsapp,omitempty" validate:"max=50"`
	Address  string       `json:"address,omitempty" validate:"max=500"`
	Notes    string       `json:"notes,omitempty" validate:"max=2000"`
	Status   ClientStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive prospect"`
}

// UpdateClientRequest replaces the editable client fields. The derived
// counters are deliberately absent.
type UpdateClientRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Email    string       `json:"email" validate:"required,email,max=254"`
	Company  string       `json:"company,omitempty" validate:"max=200"`
	Phone    string       `json:"phone,omitempty" validate:"max=50"`
	WhatsApp string       `json:"whatsapp,omitempty" validate:"max=50"`
	Address  string       `json:"address,omitempty" validate:"max=500"`
	Notes    string       `json:"notes,omitempty" validate:"max=2000"`
	Status   ClientStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive prospect"`
}

type MilestoneRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	DueDate   *Timestamp `json:"dueDate,omitempty"`
	Completed bool       `json:"completed"`
}

type CreateProjectRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	ClientID    string             `json:"clientId" validate:"required"`
	Description string             `json:"description,omitempty" validate:"max=5000"`
	StartDate   *Timestamp         `json:"startDate,omitempty"`
	EndDate     *Timestamp         `json:"endDate,omitempty"`
	Amount      decimal.Decimal    `json:"amount" validate:"gte=0"`
	Status      ProjectStatus      `json:"status,omitempty" validate:"omitempty,oneof=pending in-progress completed cancelled on-hold"`
	Priority    Priority           `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	Progress    int                `json:"progress" validate:"gte=0,lte=100"`
	Tags        []string           `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
	Milestones  []MilestoneRequest `json:"milestones,omitempty" validate:"omitempty,dive"`
}

type UpdateProjectRequest struct {
	Title       string             `json:"title" validate:"required,max=200"`
	ClientID    string             `json:"clientId" validate:"required"`
	Description string             `json:"description,omitempty" validate:"max=5000"`
	StartDate   *Timestamp         `json:"startDate,omitempty"`
	EndDate     *Timestamp         `json:"endDate,omitempty"`
	Amount      decimal.Decimal    `json:"amount" validate:"gte=0"`
	Status      ProjectStatus      `json:"status" validate:"required,oneof=pending in-progress completed cancelled on-hold"`
	Priority    Priority           `json:"priority" validate:"required,oneof=low medium high urgent"`
	Progress    int                `json:"progress" validate:"gte=0,lte=100"`
	Tags        []string           `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
	Milestones  []MilestoneRequest `json:"milestones,omitempty" validate:"omitempty,dive"`
}

type InvoiceItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

type CreateInvoiceRequest struct {
	ClientID  string               `json:"clientId" validate:"required"`
	ProjectID string               `json:"projectId,omitempty"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount  decimal.Decimal      `json:"discount" validate:"gte=0,lte=100"`
	Tax       decimal.Decimal      `json:"tax" validate:"gte=0,lte=100"`
	DueDate   *Timestamp           `json:"dueDate,omitempty"`
	Notes     string               `json:"notes,omitempty" validate:"max=5000"`
}

// UpdateInvoiceRequest is a full edit; totals are recomputed from the new items
type UpdateInvoiceRequest struct {
	ClientID  string               `json:"clientId" validate:"required"`
	ProjectID string               `json:"projectId,omitempty"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount  decimal.Decimal      `json:"discount" validate:"gte=0,lte=100"`
	Tax       decimal.Decimal      `json:"tax" validate:"gte=0,lte=100"`
	DueDate   *Timestamp           `json:"dueDate,omitempty"`
	Notes     string               `json:"notes,omitempty" validate:"max=5000"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" validate:"required,oneof=draft sent paid overdue cancelled"`
	// PaidAmount defaults to the invoice total when marking paid
	PaidAmount *decimal.Decimal `json:"paidAmount,omitempty"`
}

type CreateNotificationRequest struct {
	Type      NotificationType `json:"type" validate:"required,oneof=client_added project_created project_completed deadline_reminder project_overdue invoice_generated invoice_overdue payment_received system_alert"`
	Title     string           `json:"title" validate:"required,max=200"`
	Message   string           `json:"message" validate:"required,max=2000"`
	ClientID  string           `json:"clientId,omitempty"`
	ProjectID string           `json:"projectId,omitempty"`
	InvoiceID string           `json:"invoiceId,omitempty"`
	Priority  Priority         `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"`
	User      UserDTO `json:"user"`
}
