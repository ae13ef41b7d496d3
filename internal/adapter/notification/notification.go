package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"quality-scanner/internal/model"
	"quality-scanner/internal/pkg/config"
	"quality-scanner/pkg/constants"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotifyScanPassed   NotificationType = "scan_passed"   // 扫描通过
	NotifyScanWarnings NotificationType = "scan_warnings" // 扫描通过但有警告
	NotifyScanFailed   NotificationType = "scan_failed"   // 扫描失败
)

// NotificationMessage 通知消息
type NotificationMessage struct {
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"` // 额外信息
}

// Notifier 通知器接口
type Notifier interface {
	// Send 发送通知
	Send(ctx context.Context, msg *NotificationMessage) error

	// SendScanNotification 扫描结束通知
	SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error
}

// TypeForStatus 扫描终态对应的通知类型
func TypeForStatus(status string) (NotificationType, bool) {
	switch status {
	case constants.ScanStatusPassed:
		return NotifyScanPassed, true
	case constants.ScanStatusPassedWithWarnings:
		return NotifyScanWarnings, true
	case constants.ScanStatusFailed:
		return NotifyScanFailed, true
	default:
		return "", false
	}
}

// NewFromConfig 日志通知总是启用, 配置了 webhook 时同时发送 Lark
func NewFromConfig(cfg *config.NotificationConfig, logger *zap.Logger) Notifier {
	notifiers := []Notifier{NewLogNotifier(logger)}
	if cfg.LarkWebhook != "" {
		notifiers = append(notifiers, NewLarkNotifier(cfg.LarkWebhook, cfg.Enabled, logger))
	}
	return NewMultiNotifier(logger, notifiers...)
}

func buildScanMessage(scan *model.Scan, projectName string) (*NotificationMessage, error) {
	notifyType, ok := TypeForStatus(scan.Status)
	if !ok {
		return nil, fmt.Errorf("扫描未结束: %s", scan.Status)
	}

	var title, color string
	switch notifyType {
	case NotifyScanPassed:
		title = "✅ 质量扫描通过"
		color = "green"
	case NotifyScanWarnings:
		title = "⚠️ 质量扫描通过(有警告)"
		color = "orange"
	default:
		title = "❌ 质量扫描失败"
		color = "red"
	}

	content := fmt.Sprintf("**项目**: %s\n**扫描编号**: %s\n**错误**: %d\n**警告**: %d",
		projectName, scan.ScanCode, scan.ErrorsCount, scan.WarningsCount)
	if scan.BranchName != nil {
		content += fmt.Sprintf("\n**分支**: %s", *scan.BranchName)
	}
	if scan.PRKey != nil {
		content += fmt.Sprintf("\n**PR**: %s", *scan.PRKey)
	}

	timestamp := time.Now()
	if scan.FinishedAt != nil {
		timestamp = *scan.FinishedAt
	}

	return &NotificationMessage{
		Type:      notifyType,
		Title:     title,
		Content:   content,
		Timestamp: timestamp,
		Extra: map[string]interface{}{
			"scan_id":    scan.ID,
			"project_id": scan.ProjectID,
			"color":      color,
		},
	}, nil
}

// ============= Lark 通知适配器 =============

// LarkNotifier Lark通知器
type LarkNotifier struct {
	webhookURL string
	enabled    bool
	logger     *zap.Logger
	client     *http.Client
}

// NewLarkNotifier 创建Lark通知器
func NewLarkNotifier(webhookURL string, enabled bool, logger *zap.Logger) *LarkNotifier {
	return &LarkNotifier{
		webhookURL: webhookURL,
		enabled:    enabled,
		logger:     logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send 发送通知
func (n *LarkNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	if !n.enabled {
		n.logger.Debug("通知已禁用,跳过发送")
		return nil
	}

	if n.webhookURL == "" {
		n.logger.Warn("Lark Webhook URL未配置")
		return nil
	}

	// 构建Lark消息格式
	jsonData, err := json.Marshal(n.buildLarkMessage(msg))
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Lark API返回错误状态码: %d", resp.StatusCode)
	}

	n.logger.Info("Lark通知发送成功",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title))

	return nil
}

// SendScanNotification 发送扫描结果通知
func (n *LarkNotifier) SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error {
	msg, err := buildScanMessage(scan, projectName)
	if err != nil {
		return err
	}
	return n.Send(ctx, msg)
}

// buildLarkMessage 构建Lark消息格式
func (n *LarkNotifier) buildLarkMessage(msg *NotificationMessage) map[string]interface{} {
	color := "grey"
	if c, ok := msg.Extra["color"].(string); ok {
		color = c
	}

	// Lark卡片消息格式
	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": msg.Title,
				},
				"template": color,
			},
			"elements": []interface{}{
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "lark_md",
						"content": msg.Content,
					},
				},
				map[string]interface{}{
					"tag": "div",
					"text": map[string]interface{}{
						"tag":     "plain_text",
						"content": fmt.Sprintf("时间: %s", msg.Timestamp.UTC().Format("2006-01-02 15:04:05")),
					},
				},
			},
		},
	}
}

// ============= 多通知器 =============

// MultiNotifier 多通知器(支持同时发送到多个渠道)
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Send 发送到所有通知器
func (m *MultiNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("发送通知失败", zap.Error(err))
			lastErr = err
			// 继续发送其他通知器
		}
	}
	return lastErr
}

// SendScanNotification 发送扫描结果通知到所有通知器
func (m *MultiNotifier) SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.SendScanNotification(ctx, scan, projectName); err != nil {
			m.logger.Error("发送扫描通知失败", zap.String("scan_id", scan.ID), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器(仅记录日志,不发送实际通知) =============

// LogNotifier 日志通知器
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

// Send 记录通知到日志
func (n *LogNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	n.logger.Info("📢 通知",
		zap.String("type", string(msg.Type)),
		zap.String("title", msg.Title),
		zap.String("content", msg.Content),
		zap.Any("extra", msg.Extra))
	return nil
}

// SendScanNotification 记录扫描结果到日志
func (n *LogNotifier) SendScanNotification(ctx context.Context, scan *model.Scan, projectName string) error {
	n.logger.Info("📢 扫描结束",
		zap.String("project", projectName),
		zap.String("scan_id", scan.ID),
		zap.String("scan_code", scan.ScanCode),
		zap.String("status", scan.Status),
		zap.Int("errors", scan.ErrorsCount),
		zap.Int("warnings", scan.WarningsCount))
	return nil
}
