// internal/domain/models/newsletter.go
package models

import "time"

// NewsletterSubscription is one mailing-list address. The normalized email is the
// document key, so an address can only be subscribed once.
type NewsletterSubscription struct {
	Email        string    `bson:"_id" json:"email"`
	SubscribedAt time.Time `bson:"subscribed_at" json:"subscribed_at"`
}
