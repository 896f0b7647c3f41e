package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/pkg/sendgrid"
)

// NotificationService sends the order confirmation email.
type NotificationService struct {
	emailService sendgrid.EmailService
}

func NewNotificationService(emailService sendgrid.EmailService) *NotificationService {
	return &NotificationService{emailService: emailService}
}

func (n *NotificationService) OrderConfirmed(ctx context.Context, order *models.Order) error {

	if order.Customer.Email == "" {
		return errors.BadRequestError("Order has no contact email")
	}

	req := &models.EmailNotificationRequest{
		To:          order.Customer.Email,
		Subject:     fmt.Sprintf("Your VM Jewels order %s", order.ID),
		Content:     confirmationText(order),
		HTMLContent: confirmationHTML(order),
	}

	if err := n.emailService.Send(ctx, req); err != nil {
		return errors.ThirdPartyError("Failed to send confirmation email").WithError(err)
	}

	return nil
}

func lineLabel(line models.CartLineItem) string {

	var extras []string
	if line.Metal != "" {
		extras = append(extras, line.Metal.DisplayName())
	}
	if line.Size != "" {
		extras = append(extras, "Size "+line.Size)
	}

	if len(extras) == 0 {
		return line.Name
	}

	return fmt.Sprintf("%s (%s)", line.Name, strings.Join(extras, ", "))
}

func confirmationText(order *models.Order) string {

	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order! Your order number is %s.\n\n", order.Customer.FirstName, order.ID)

	for _, line := range order.Items {
		fmt.Fprintf(&b, "%d x %s  $%s\n", line.Quantity, lineLabel(line), line.LineTotal().StringFixed(2))
	}

	if order.PromoCode != "" {
		fmt.Fprintf(&b, "\nPromo code: %s (-$%s)", order.PromoCode, order.Totals.Discount.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nShipping: $%s\nTax: $%s\nTotal: $%s\n",
		order.Totals.Shipping.StringFixed(2), order.Totals.Tax.StringFixed(2), order.Total.StringFixed(2))

	return b.String()
}

func confirmationHTML(order *models.Order) string {

	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thank you for your order, %s!</h2>", html.EscapeString(order.Customer.FirstName))
	fmt.Fprintf(&b, "<p>Order number: <strong>%s</strong></p><ul>", html.EscapeString(order.ID))

	for _, line := range order.Items {
		fmt.Fprintf(&b, "<li>%d &times; %s &mdash; $%s</li>", line.Quantity, html.EscapeString(lineLabel(line)), line.LineTotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "</ul><p>Total: <strong>$%s</strong></p>", order.Total.StringFixed(2))

	return b.String()
}
