package services

import (
	"fmt"
	"strings"

	"RetailPOS/app/models"

	"github.com/skip2/go-qrcode"
)

const receiptWidth = 32

// ReceiptPayload is the text encoded in a receipt's QR code
func ReceiptPayload(sale models.Sale) string {
	return fmt.Sprintf("SALE:%s|TOTAL:%.2f|CUR:%s", sale.ID, sale.Total, sale.Currency)
}

// ReceiptQR renders the sale's QR code as a PNG of size×size pixels
func ReceiptQR(sale models.Sale, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	qr, err := qrcode.New(ReceiptPayload(sale), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	qr.DisableBorder = false

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// ReceiptText lays a sale out as a fixed-width paper receipt
func ReceiptText(sale models.Sale, businessName string) string {
	var b strings.Builder

	b.WriteString(center(businessName))
	b.WriteString(separator())
	b.WriteString(fmt.Sprintf("Receipt: #%s\n", shortID(sale.ID)))
	b.WriteString(fmt.Sprintf("Date: %s\n", sale.Timestamp.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Customer: %s\n", sale.CustomerName))
	b.WriteString(fmt.Sprintf("Order: %s\n", sale.OrderType))

	b.WriteString(separator())
	for _, item := range sale.Items {
		b.WriteString(wrapText(fmt.Sprintf("%d x %s", item.Qty, item.Name), receiptWidth))
		b.WriteString(fmt.Sprintf("  %s%s ea = %s%s\n",
			sale.Currency, formatMoney(item.Price),
			sale.Currency, formatMoney(item.LineTotal())))
	}

	b.WriteString(separator())
	b.WriteString(fmt.Sprintf("Subtotal: %s%s\n", sale.Currency, formatMoney(sale.Subtotal)))
	if sale.Discount > 0 {
		b.WriteString(fmt.Sprintf("Discount: -%s%s\n", sale.Currency, formatMoney(sale.Discount)))
	}
	if sale.Tax > 0 {
		b.WriteString(fmt.Sprintf("Tax: %s%s\n", sale.Currency, formatMoney(sale.Tax)))
	}
	b.WriteString(fmt.Sprintf("TOTAL: %s%s\n", sale.Currency, formatMoney(sale.Total)))
	b.WriteString(fmt.Sprintf("Paid by: %s\n", sale.PaymentMethod))

	b.WriteString("\n")
	b.WriteString(center("Thank you for your purchase!"))
	return b.String()
}

// shortID is the last six characters of a sale id, upper-cased, as shown to customers
func shortID(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

func separator() string {
	return strings.Repeat("=", receiptWidth) + "\n"
}

// formatMoney rounds to two decimals for display only
func formatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func center(text string) string {
	n := len([]rune(text))
	if n >= receiptWidth {
		return text + "\n"
	}
	return strings.Repeat(" ", (receiptWidth-n)/2) + text + "\n"
}

func wrapText(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text + "\n"
	}

	var result strings.Builder
	for i := 0; i < len(runes); i += width {
		end := min(i+width, len(runes))
		result.WriteString(string(runes[i:end]) + "\n")
	}
	return result.String()
}
