package mapper

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/straye-as/billing-api/internal/billing"
	"github.com/straye-as/billing-api/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Money rounds an amount to two places for presentation
func Money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:            client.ID,
		Name:          client.Name,
		Email:         client.Email,
		Company:       client.Company,
		Phone:         client.Phone,
		WhatsApp:      client.WhatsApp,
		Address:       client.Address,
		Notes:         client.Notes,
		Status:        client.Status,
		TotalProjects: client.TotalProjects,
		TotalRevenue:  Money(client.TotalRevenue),
		CreatedAt:     formatTime(client.CreatedAt),
		UpdatedAt:     formatTime(client.UpdatedAt),
	}
}

// ToClientDetailDTO converts a client with its projects and invoices
func ToClientDetailDTO(client *domain.Client, projects []*domain.Project, invoices []*domain.Invoice, now time.Time) domain.ClientDetailDTO {
	dto := domain.ClientDetailDTO{
		ClientDTO: ToClientDTO(client),
		Projects:  make([]domain.ProjectDTO, 0, len(projects)),
		Invoices:  make([]domain.InvoiceDTO, 0, len(invoices)),
	}
	for _, p := range projects {
		dto.Projects = append(dto.Projects, ToProjectDTO(p, client.Name, now))
	}
	for _, inv := range invoices {
		dto.Invoices = append(dto.Invoices, ToInvoiceDTO(inv, client.Name, now))
	}
	return dto
}

// ToProjectDTO converts Project to ProjectDTO. clientName may be empty.
func ToProjectDTO(project *domain.Project, clientName string, now time.Time) domain.ProjectDTO {
	milestones := make([]domain.MilestoneDTO, 0, len(project.Milestones))
	for _, m := range project.Milestones {
		milestones = append(milestones, domain.MilestoneDTO{
			Title:     m.Title,
			DueDate:   formatTimePtr(m.DueDate),
			Completed: m.Completed,
		})
	}

	tags := project.Tags
	if tags == nil {
		tags = []string{}
	}

	return domain.ProjectDTO{
		ID:            project.ID,
		Title:         project.Title,
		ClientID:      project.ClientID,
		ClientName:    clientName,
		Description:   project.Description,
		StartDate:     formatTimePtr(project.StartDate),
		EndDate:       formatTimePtr(project.EndDate),
		Amount:        Money(project.Amount),
		Status:        project.Status,
		Priority:      project.Priority,
		Progress:      project.Progress,
		Tags:          tags,
		Milestones:    milestones,
		CompletedDate: formatTimePtr(project.CompletedDate),
		IsOverdue:     project.IsOverdue(now),
		CreatedAt:     formatTime(project.CreatedAt),
		UpdatedAt:     formatTime(project.UpdatedAt),
	}
}

// ToInvoiceDTO converts Invoice to InvoiceDTO, reporting the effective status at now
func ToInvoiceDTO(invoice *domain.Invoice, clientName string, now time.Time) domain.InvoiceDTO {
	items := make([]domain.InvoiceItemDTO, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, domain.InvoiceItemDTO{
			Description: item.Description,
			Quantity:    item.Quantity.InexactFloat64(),
			Rate:        Money(item.Rate),
			Amount:      Money(item.Amount),
		})
	}

	return domain.InvoiceDTO{
		ID:             invoice.ID,
		InvoiceNumber:  invoice.InvoiceNumber,
		ClientID:       invoice.ClientID,
		ClientName:     clientName,
		ProjectID:      invoice.ProjectID,
		Items:          items,
		Subtotal:       Money(invoice.Subtotal),
		Discount:       invoice.Discount.InexactFloat64(),
		DiscountAmount: Money(invoice.DiscountAmount),
		Tax:            invoice.Tax.InexactFloat64(),
		TaxAmount:      Money(invoice.TaxAmount),
		Total:          Money(invoice.Total),
		Status:         billing.EffectiveStatus(invoice, now),
		DueDate:        formatTimePtr(invoice.DueDate),
		Notes:          invoice.Notes,
		PaidAmount:     Money(invoice.PaidAmount),
		SentDate:       formatTimePtr(invoice.SentDate),
		PaidDate:       formatTimePtr(invoice.PaidDate),
		CreatedAt:      formatTime(invoice.CreatedAt),
		UpdatedAt:      formatTime(invoice.UpdatedAt),
	}
}

func toChannelDeliveryDTO(c domain.ChannelDelivery) domain.ChannelDeliveryDTO {
	return domain.ChannelDeliveryDTO{
		Attempted: c.Attempted,
		Succeeded: c.Succeeded,
		Timestamp: formatTimePtr(c.Timestamp),
		Error:     c.Error,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ClientID:  n.ClientID,
		ProjectID: n.ProjectID,
		InvoiceID: n.InvoiceID,
		Priority:  n.Priority,
		Status:    n.Status,
		Channels: map[string]domain.ChannelDeliveryDTO{
			"email":    toChannelDeliveryDTO(n.Channels.Email),
			"whatsapp": toChannelDeliveryDTO(n.Channels.WhatsApp),
		},
		ReadAt:    formatTimePtr(n.ReadAt),
		ExpiresAt: formatTime(n.ExpiresAt),
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// ToUserDTO converts User to UserDTO, leaving out the password hash
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: formatTime(user.CreatedAt),
	}
}
