package models

import "time"

type Lead struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	BatchID     string    `db:"batch_id" json:"batch_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Email       string    `db:"email" json:"email"`
	Company     string    `db:"company" json:"company"`
	Title       string    `db:"title" json:"title"`
	Phone       string    `db:"phone" json:"phone"`
	Website     string    `db:"website" json:"website"`
	LinkedinURL string    `db:"linkedin_url" json:"linkedin_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
