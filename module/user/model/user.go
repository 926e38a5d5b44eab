package model

import (
	"fmt"
	"time"
)

const UserTableName = "users"

// User is a locally registered account. Password is the bcrypt hash, never
// the plaintext, and never serialized outward. The key pair backs client-side
// message encryption: the public key is served to other users, the private
// key is stored already encrypted with a secret only the owner holds, and
// neither travels in the default serialization.
type User struct {
	ID                  int64     `bson:"_id" json:"id"`
	Username            string    `bson:"username" json:"username"`
	Email               string    `bson:"email" json:"email"`
	Password            string    `bson:"password" json:"-"`
	ServerDomain        string    `bson:"server_domain,omitempty" json:"serverDomain,omitempty"`
	PublicKey           string    `bson:"public_key,omitempty" json:"-"`
	EncryptedPrivateKey string    `bson:"encrypted_private_key,omitempty" json:"-"`
	CreatedAt           time.Time `bson:"created_at" json:"createdAt"`
}

// UserDTO is the public identity representation pushed over the wire in
// presence events and message subjects. It never carries credentials.
type UserDTO struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ServerDomain string    `json:"serverDomain,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) DTO() UserDTO {
	return UserDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		ServerDomain: u.ServerDomain,
		CreatedAt:    u.CreatedAt,
	}
}

// FederatedID is <id>@<server> when the user has a home server, else the
// bare numeric id.
func (u *UserDTO) FederatedID() string {
	if u.ServerDomain != "" {
		return fmt.Sprintf("%d@%s", u.ID, u.ServerDomain)
	}
	return fmt.Sprintf("%d", u.ID)
}
