package model

import "time"

// Credential holds the password hash for one role. Provisioned out-of-band by
// portalctl and read on every login attempt.
type Credential struct {
	Key          string    `db:"cred_key" dynamodbav:"key"`
	PasswordHash string    `db:"password_hash" dynamodbav:"passwordHash"`
	UpdatedAt    time.Time `db:"updated_at" dynamodbav:"updatedAt"`
}
