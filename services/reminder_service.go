// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"garagepro-backend/billing"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	if _, err := c.AddFunc("0 9 * * *", s.RunDaily); err != nil {
		log.Printf("Failed to schedule daily reminders: %v", err)
		return
	}

	c.Start()
	log.Println("Reminder scheduler started")
}

// RunDaily sweeps unpaid invoices past their due date to overdue, then
// sends payment reminders for the garages that opted in.
func (s *ReminderService) RunDaily() {
	log.Println("Starting daily reminder processing...")

	s.MarkOverdueInvoices()

	var garages []models.Garage
	if err := s.db.Find(&garages, "payment_reminders = ?", true).Error; err != nil {
		log.Printf("Failed to fetch garages: %v", err)
		return
	}

	for _, garage := range garages {
		s.ProcessGarageReminders(garage)
	}

	log.Println("Daily reminder processing completed")
}

// MarkOverdueInvoices walks every unpaid invoice whose due date has passed
// through the transition guard.
func (s *ReminderService) MarkOverdueInvoices() {
	now := time.Now()

	var invoices []models.Invoice
	err := s.db.Where("status IN ? AND due_date IS NOT NULL AND due_date < ?",
		[]string{string(billing.StatusSent), string(billing.StatusPending)}, now).
		Find(&invoices).Error
	if err != nil {
		log.Printf("Failed to fetch due invoices: %v", err)
		return
	}

	for _, invoice := range invoices {
		from := billing.Status(invoice.Status)
		if from == billing.StatusSent {
			// Sent invoices pass through pending on their way overdue.
			effect, err := billing.ApplyTransition(from, billing.StatusPending, now)
			if err != nil {
				log.Printf("Invoice %s: %v", invoice.InvoiceNumber, err)
				continue
			}
			from = effect.Status
		}

		effect, err := billing.ApplyTransition(from, billing.StatusOverdue, now)
		if err != nil {
			log.Printf("Invoice %s: %v", invoice.InvoiceNumber, err)
			continue
		}

		if err := s.db.Model(&invoice).Update("status", string(effect.Status)).Error; err != nil {
			log.Printf("Invoice %s: failed to mark overdue: %v", invoice.InvoiceNumber, err)
		}
	}
}

func (s *ReminderService) ProcessGarageReminders(garage models.Garage) {
	if !garage.WhatsAppNotifications && !garage.SMSNotifications {
		return
	}

	var invoices []models.Invoice
	err := s.db.Where("garage_id = ? AND status = ?", garage.ID, string(billing.StatusOverdue)).
		Find(&invoices).Error
	if err != nil {
		log.Printf("Garage %s: Failed to get overdue invoices: %v", garage.ID, err)
		return
	}

	for _, invoice := range invoices {
		if s.reminderSentToday(invoice.ID) {
			continue
		}

		var customer models.Customer
		if err := s.db.Where("id = ?", invoice.CustomerID).First(&customer).Error; err != nil {
			log.Printf("Invoice %s: customer lookup failed: %v", invoice.InvoiceNumber, err)
			continue
		}

		s.sendReminder(garage, invoice, customer)
	}
}

// reminderSentToday reports whether a reminder for this invoice already went
// out since local midnight. One reminder per invoice per day.
func (s *ReminderService) reminderSentToday(invoiceID uuid.UUID) bool {
	var count int64
	s.db.Model(&models.ReminderLog{}).
		Where("invoice_id = ? AND sent_at >= ?", invoiceID, utils.BeginningOfDay(time.Now())).
		Count(&count)
	return count > 0
}

func (s *ReminderService) sendReminder(garage models.Garage, invoice models.Invoice, customer models.Customer) {
	daysOverdue := 0
	if invoice.DueDate != nil {
		daysOverdue = utils.DaysBetween(*invoice.DueDate, time.Now())
	}
	message := fmt.Sprintf(
		"Dear %s, payment of Rs. %.2f against invoice %s at %s is %d day(s) overdue. Kindly settle it at your earliest convenience.",
		customer.Name, invoice.Total, invoice.InvoiceNumber, garage.Name, daysOverdue)

	// Prefer WhatsApp for E.164 numbers when the garage has it enabled.
	channel := "sms"
	to := customer.Phone
	if garage.WhatsAppNotifications && strings.HasPrefix(customer.Phone, "+") {
		to = "whatsapp:" + customer.Phone
		channel = "whatsapp"
	} else if !garage.SMSNotifications {
		return
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", customer.Phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", customer.Phone, *resp.Sid)
	} else {
		log.Printf("Reminder sent to %s, but no SID returned", customer.Phone)
	}

	reminderLog := models.ReminderLog{
		ID:           uuid.New(),
		GarageID:     garage.ID,
		CustomerID:   customer.ID,
		InvoiceID:    invoice.ID,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for invoice %s: %v", invoice.InvoiceNumber, err)
	}
}
