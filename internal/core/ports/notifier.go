package ports

import "go.trai.ch/vigil/internal/core/domain"

// Notifier surfaces user-visible messages.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Notify(n domain.Notification)
}
