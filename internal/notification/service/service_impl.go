package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/notification/domain"
	"github.com/bloomloft/garland/internal/notification/repository"
	"github.com/bloomloft/garland/internal/observability/metrics"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
	"github.com/bloomloft/garland/internal/providers/email"
	"github.com/bloomloft/garland/internal/providers/slack"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	GenID         *snowflake.Node
	Config        config.Config
	Notifications *config.NotificationConfigHolder
	Email         email.Provider
	Chat          slack.Provider
	Records       repository.Repository
	Metrics       *metrics.Metrics
}

type dispatcher struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	genID         *snowflake.Node
	notifications *config.NotificationConfigHolder
	email         email.Provider
	chat          slack.Provider
	records       repository.Repository
	metrics       *metrics.Metrics
	timeout       time.Duration

	customerTmpl *htmltemplate.Template
	staffTmpl    *htmltemplate.Template
	chatTmpl     *texttemplate.Template
}

func New(p Params) (domain.Dispatcher, error) {
	customerTmpl, err := htmltemplate.ParseFS(templateFS, "templates/customer_email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse customer template: %w", err)
	}
	staffTmpl, err := htmltemplate.ParseFS(templateFS, "templates/staff_email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse staff template: %w", err)
	}
	chatTmpl, err := texttemplate.ParseFS(templateFS, "templates/chat.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse chat template: %w", err)
	}

	timeout := time.Duration(p.Config.NotifyTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &dispatcher{
		db:            p.DB,
		log:           p.Log.Named("notification.dispatcher"),
		clock:         p.Clock,
		genID:         p.GenID,
		notifications: p.Notifications,
		email:         p.Email,
		chat:          p.Chat,
		records:       p.Records,
		metrics:       p.Metrics,
		timeout:       timeout,
		customerTmpl:  customerTmpl,
		staffTmpl:     staffTmpl,
		chatTmpl:      chatTmpl,
	}, nil
}

// templateData is the view rendered into every channel.
type templateData struct {
	StoreName       string
	Greeting        string
	Signature       string
	OrderNumber     string
	SenderName      string
	RecipientName   string
	DeliveryAddress string
	City            string
	DeliveryDate    string
	TimeSlot        string
	DeliveryNote    string
	Items           []checkoutdomain.CartItem
	Total           string
	TrackingURL     string
	TestMode        bool
}

// Dispatch fans the order out to the configured channels and waits for
// every attempt to settle. Failures are logged and counted, never
// returned; the payment is already recorded by the time this runs.
func (d *dispatcher) Dispatch(ctx context.Context, order *orderdomain.Order) {
	cfg := d.notifications.Get()

	if order.Payment.TestMode && !cfg.IncludeTestOrders {
		d.log.Debug("skipping notifications for test order",
			zap.String("order_number", order.OrderNumber),
		)
		return
	}

	data, err := d.buildTemplateData(order, cfg)
	if err != nil {
		d.log.Error("notification payload unrenderable, all channels skipped",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		return
	}

	var wg sync.WaitGroup

	if addr := strings.TrimSpace(data.senderEmail); addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendEmail(ctx, order, domain.ChannelCustomerEmail, []string{addr},
				renderSubject(cfg.CustomerSubject, data), d.customerTmpl, data)
		}()
	} else {
		d.log.Info("customer has no email address, confirmation skipped",
			zap.String("order_number", order.OrderNumber),
		)
	}

	if len(cfg.StaffRecipients) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendEmail(ctx, order, domain.ChannelStaffEmail, cfg.StaffRecipients,
				renderSubject(cfg.StaffSubject, data), d.staffTmpl, data)
		}()
	}

	if cfg.ChatEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.sendChat(ctx, order, cfg.ChatChannel, data)
		}()
	}

	wg.Wait()
}

func (d *dispatcher) sendEmail(ctx context.Context, order *orderdomain.Order, channel string, to []string, subject string, tmpl *htmltemplate.Template, data *renderData) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.templateData); err != nil {
		d.log.Error("email template failed",
			zap.String("channel", channel),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		d.metrics.NotificationOutcome(channel, false)
		d.record(ctx, order, channel, strings.Join(to, ","), "", err)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.email.Send(attemptCtx, to, subject, body.String())
	d.metrics.NotificationOutcome(channel, err == nil)
	if err != nil {
		d.log.Warn("email delivery failed",
			zap.String("channel", channel),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	d.record(ctx, order, channel, strings.Join(to, ","), body.String(), err)
}

func (d *dispatcher) sendChat(ctx context.Context, order *orderdomain.Order, channel string, data *renderData) {
	var msg bytes.Buffer
	if err := d.chatTmpl.Execute(&msg, data.templateData); err != nil {
		d.log.Error("chat template failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
		d.metrics.NotificationOutcome(domain.ChannelChat, false)
		d.record(ctx, order, domain.ChannelChat, channel, "", err)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.chat.PostMessage(attemptCtx, channel, strings.TrimSpace(msg.String()))
	d.metrics.NotificationOutcome(domain.ChannelChat, err == nil)
	if err != nil {
		d.log.Warn("chat delivery failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	d.record(ctx, order, domain.ChannelChat, channel, msg.String(), err)
}

// record appends the audit row. Best effort: a failed insert is logged
// and dropped so a flaky store cannot take down the dispatch path.
func (d *dispatcher) record(ctx context.Context, order *orderdomain.Order, channel, recipient, payload string, sendErr error) {
	rec := &domain.Record{
		ID:        d.genID.Generate(),
		OrderID:   order.ID,
		Channel:   channel,
		Recipient: recipient,
		Outcome:   domain.OutcomeSent,
		CreatedAt: d.clock.Now(),
	}
	if sendErr != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Error = sendErr.Error()
	}
	if payload != "" {
		sum := sha256.Sum256([]byte(payload))
		rec.PayloadDigest = hex.EncodeToString(sum[:])
	}

	if err := d.records.Insert(context.WithoutCancel(ctx), d.db, rec); err != nil {
		d.log.Warn("notification record insert failed",
			zap.String("channel", channel),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

// renderData pairs the template view with fields the channels need but
// the templates must not see.
type renderData struct {
	templateData
	senderEmail string
}

func (d *dispatcher) buildTemplateData(order *orderdomain.Order, cfg config.NotificationConfig) (*renderData, error) {
	var items []checkoutdomain.CartItem
	if err := json.Unmarshal(order.Items, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	var party checkoutdomain.Party
	if err := json.Unmarshal(order.Party, &party); err != nil {
		return nil, fmt.Errorf("decode party: %w", err)
	}

	trackingURL := ""
	if cfg.OrderTrackingURL != "" {
		trackingURL = strings.ReplaceAll(cfg.OrderTrackingURL, "{orderNumber}", order.OrderNumber)
	}

	return &renderData{
		templateData: templateData{
			StoreName:       cfg.StoreName,
			Greeting:        cfg.CustomerGreeting,
			Signature:       cfg.CustomerSignature,
			OrderNumber:     order.OrderNumber,
			SenderName:      party.Sender.Name,
			RecipientName:   party.Recipient.Name,
			DeliveryAddress: party.Delivery.Address,
			City:            party.Delivery.City,
			DeliveryDate:    party.Delivery.Date,
			TimeSlot:        party.Delivery.TimeSlot,
			DeliveryNote:    party.Delivery.Note,
			Items:           items,
			Total:           formatAmount(order.TotalAmount, order.Payment.Currency),
			TrackingURL:     trackingURL,
			TestMode:        order.Payment.TestMode,
		},
		senderEmail: party.Sender.Email,
	}, nil
}

// renderSubject expands the configured subject line. A broken template in
// notifications.yml falls back to the raw string rather than failing the
// send.
func renderSubject(subject string, data *renderData) string {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return subject
	}
	var b bytes.Buffer
	if err := tmpl.Execute(&b, data.templateData); err != nil {
		return subject
	}
	return b.String()
}

func formatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "TRY"
	}
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
