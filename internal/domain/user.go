package domain

import "time"

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PhoneNo      string    `bson:"phone_no" json:"phoneNo"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Photo        string    `bson:"photo,omitempty" json:"photo,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// Address is the caller's single saved address record, one per user.
type Address struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	UserID    string    `bson:"user_id" json:"userId"`
	Address   string    `bson:"address" json:"address"`
	Pincode   string    `bson:"pincode" json:"pincode"`
	City      string    `bson:"city" json:"city"`
	State     string    `bson:"state" json:"state"`
	Landmark  string    `bson:"landmark,omitempty" json:"landmark,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
