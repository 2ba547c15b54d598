package enums

import "fmt"

// NotificationType categorizes in-app notification payloads.
type NotificationType string

const (
	NotificationOrderPlaced   NotificationType = "order_placed"
	NotificationOrderApproved NotificationType = "order_approved"
	NotificationOrderRejected NotificationType = "order_rejected"
	NotificationOrderPaid     NotificationType = "order_paid"
	NotificationOrderProgress NotificationType = "order_progress"
	NotificationPayoutAlert   NotificationType = "payout_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationOrderPlaced,
	NotificationOrderApproved,
	NotificationOrderRejected,
	NotificationOrderPaid,
	NotificationOrderProgress,
	NotificationPayoutAlert,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
