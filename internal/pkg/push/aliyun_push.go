package push

import (
	"encoding/json"
	"fmt"

	"post_audit_service/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
)

// Notifier 审核结果通知
// 审核落库后异步调用，失败不影响审核结果
type Notifier interface {
	NotifyAuditResult(accountID, postTitle string, approved bool, reason string) error
}

type AliyunPushNotifier struct {
	client *push.Client
	appKey int64
}

func NewAliyunPushNotifier() (*AliyunPushNotifier, error) {
	cfg := config.GlobalConfig.Push

	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, fmt.Errorf("push config is missing")
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushNotifier{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

// NotifyAuditResult 按账号推送审核结果
func (s *AliyunPushNotifier) NotifyAuditResult(accountID, postTitle string, approved bool, reason string) error {
	title := "文章审核通过"
	body := fmt.Sprintf("《%s》已通过审核，现已公开可见", postTitle)
	if !approved {
		title = "文章审核未通过"
		body = fmt.Sprintf("《%s》未通过审核：%s", postTitle, reason)
	}

	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"  // iOS & Android
	request.PushType = "NOTICE" // 通知

	ext, _ := json.Marshal(map[string]string{"type": "post_audit"})
	request.AndroidExtParameters = string(ext)
	request.IOSExtParameters = string(ext)

	_, err := s.client.Push(request)
	return err
}

// NoopNotifier 推送未配置时的空实现
type NoopNotifier struct{}

func (NoopNotifier) NotifyAuditResult(string, string, bool, string) error { return nil }

// NewNotifier 根据配置选择实现
func NewNotifier() Notifier {
	if !config.GlobalConfig.Push.Enabled {
		return NoopNotifier{}
	}
	n, err := NewAliyunPushNotifier()
	if err != nil {
		return NoopNotifier{}
	}
	return n
}
