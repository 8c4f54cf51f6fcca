package services

import (
	"bytes"
	"context"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	config "github.com/desainhub/desainhub-api/configs"
	"github.com/desainhub/desainhub-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const receiptTemplate = `<!DOCTYPE html>
<html>
<head><style>
body { font-family: 'Segoe UI', Tahoma, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px; color: #333; }
h1 { color: #2563eb; border-bottom: 1px solid #e5e7eb; padding-bottom: 10px; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
td { padding: 8px 0; border-bottom: 1px solid #f3f4f6; }
td:last-child { text-align: right; font-weight: bold; }
.footer { margin-top: 40px; font-size: 12px; color: #6b7280; text-align: center; }
</style></head>
<body>
<h1>Payment Receipt</h1>
<table>
<tr><td>Service</td><td>{{.ServiceTitle}}</td></tr>
<tr><td>Client</td><td>{{.ClientName}}</td></tr>
<tr><td>Payment method</td><td>{{.PaymentMethod}}</td></tr>
<tr><td>Amount</td><td>${{printf "%.2f" .Amount}}</td></tr>
<tr><td>Settled at</td><td>{{.SettledAt}}</td></tr>
<tr><td>Reference</td><td>{{.Reference}}</td></tr>
</table>
<div class="footer">DesainHub — thank you for your business.</div>
</body>
</html>`

// GenerateReceipt renders a PDF receipt for a settled payment and stores it
// next to the payment record. Best-effort: a failure is logged and the
// settlement stands.
func GenerateReceipt(db *gorm.DB, paymentID uuid.UUID) {
	if config.Config("RECEIPTS_ENABLED") != "true" {
		return
	}

	var payment models.Payment
	if err := db.Preload("Order.Service").Preload("Client").
		First(&payment, "id = ?", paymentID).Error; err != nil {
		log.Printf("🔥 Failed to load payment %s for receipt: %v", paymentID, err)
		return
	}

	html, err := renderReceiptHTML(payment)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(html)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF: %v", err)
		return
	}

	if FileStore == nil {
		log.Println("⚠️ File storage not configured, skipping receipt upload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stored, err := FileStore.UploadBytes(ctx, pdfBytes, "receipt_"+payment.ID.String()+".pdf", ReceiptFolder)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for payment %s: %v", payment.ID, err)
		return
	}

	if err := db.Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Update("receipt_url", stored.URL).Error; err != nil {
		log.Printf("🔥 Failed to save receipt URL for payment %s: %v", payment.ID, err)
		return
	}

	log.Printf("✅ Receipt generated for payment %s", payment.ID)
}

func renderReceiptHTML(payment models.Payment) (string, error) {
	tmpl, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return "", err
	}

	data := struct {
		ServiceTitle  string
		ClientName    string
		PaymentMethod string
		Amount        float64
		SettledAt     string
		Reference     string
	}{
		ServiceTitle:  payment.Order.Service.Title,
		ClientName:    payment.Client.Name,
		PaymentMethod: payment.PaymentMethod,
		Amount:        payment.Amount,
		SettledAt:     payment.UpdatedAt.Format("January 2, 2006 15:04"),
		Reference:     payment.GatewayOrderID,
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}
