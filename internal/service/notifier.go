package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"shift-calendar/backend/config"
)

// Reminder 一条待投递的班次提醒
type Reminder struct {
	ShiftID  string    `json:"shift_id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Language string    `json:"language"`
	DueAt    time.Time `json:"due_at"`
}

// Notifier 提醒投递通道
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// ════════════════════════════════════════════════════════════
// 日志通知（默认通道，也是投递失败时的兜底）
// ════════════════════════════════════════════════════════════

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 以 Warn 级日志输出提醒
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, r Reminder) error {
	n.logger.Warn(r.Title,
		zap.String("shift_id", r.ShiftID),
		zap.String("body", r.Body),
		zap.Time("due_at", r.DueAt),
	)
	return nil
}

// ════════════════════════════════════════════════════════════
// RabbitMQ 通知
// ════════════════════════════════════════════════════════════

// Publisher amqp.Channel 中提醒投递用到的部分
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type amqpNotifier struct {
	ch      Publisher
	queue   string
	timeout time.Duration
}

// NewAMQPNotifier 将提醒以 JSON 消息发布到队列
func NewAMQPNotifier(ch Publisher, queue string, timeout time.Duration) Notifier {
	return &amqpNotifier{ch: ch, queue: queue, timeout: timeout}
}

func (n *amqpNotifier) Notify(ctx context.Context, r Reminder) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("序列化提醒失败: %w", err)
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	if err := n.ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    r.DueAt,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("发布提醒消息失败: %w", err)
	}
	return nil
}

// DialAMQP 连接 RabbitMQ 并声明提醒队列，返回的 close 依次关闭通道与连接
func DialAMQP(cfg *config.AMQPConfig) (*amqp.Channel, func(), error) {
	conn, err := amqp.Dial(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建通道失败: %w", err)
	}
	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // 持久化
		false, // 不自动删除
		false, // 非独占
		false, // 等待确认
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("声明队列失败: %w", err)
	}
	closeFn := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	return ch, closeFn, nil
}

// ════════════════════════════════════════════════════════════
// 邮件通知
// ════════════════════════════════════════════════════════════

// MailSender mail.Client 中发送邮件用到的部分
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type smtpNotifier struct {
	client MailSender
	from   string
	to     string
}

// NewSMTPNotifier 以纯文本邮件投递提醒
func NewSMTPNotifier(client MailSender, from, to string) Notifier {
	return &smtpNotifier{client: client, from: from, to: to}
}

func (n *smtpNotifier) Notify(ctx context.Context, r Reminder) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := msg.To(n.to); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}
	msg.Subject(r.Title)
	msg.SetBodyString(mail.TypeTextPlain, r.Body)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("发送提醒邮件失败: %w", err)
	}
	return nil
}

// NewMailClient 按配置创建 SMTP 客户端。465 端口使用 SSL，其余端口尝试 STARTTLS。
func NewMailClient(cfg *config.SMTPConfig) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建邮件客户端失败: %w", err)
	}
	return client, nil
}

// ════════════════════════════════════════════════════════════
// 兜底
// ════════════════════════════════════════════════════════════

type fallbackNotifier struct {
	primary  Notifier
	fallback Notifier
	logger   *zap.Logger
}

// NewFallbackNotifier primary 投递失败时改用 fallback
func NewFallbackNotifier(primary, fallback Notifier, logger *zap.Logger) Notifier {
	return &fallbackNotifier{primary: primary, fallback: fallback, logger: logger}
}

func (n *fallbackNotifier) Notify(ctx context.Context, r Reminder) error {
	err := n.primary.Notify(ctx, r)
	if err == nil {
		return nil
	}
	n.logger.Warn("提醒投递失败，改用兜底通道", zap.String("shift_id", r.ShiftID), zap.Error(err))
	if ferr := n.fallback.Notify(ctx, r); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}
