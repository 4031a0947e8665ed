package models

import (
	"fmt"
	"time"
)

// Task levels, ordered by expiration horizon.
const (
	LevelTask    = "task"    // re-evaluate after 1 day
	LevelTodo    = "todo"    // re-evaluate after 7 days
	LevelGottado = "gottado" // re-evaluate after 30 days
)

// levelDays maps a task level to its default expiration horizon in days.
var levelDays = map[string]int{
	LevelTask:    1,
	LevelTodo:    7,
	LevelGottado: 30,
}

// CompletedSentinel marks a task that has never been completed.
// Ides of March as placeholder.
var CompletedSentinel = time.Date(44, time.March, 15, 0, 0, 0, 0, time.UTC)

// Task is a single to-do item. expired_date is when the task should move up
// to the next level (task -> todo -> gottado).
type Task struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:128;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	Completed     bool      `gorm:"index;not null" json:"completed"`
	CreatedDate   time.Time `gorm:"not null" json:"created_date"`
	ExpiredDate   time.Time `gorm:"not null" json:"expired_date"`
	CompletedDate time.Time `json:"completed_date"`
	HighPriority  bool      `json:"high_priority"`
	Level         string    `gorm:"size:16;index;not null" json:"level"`
	HasImage      bool      `json:"has_image"`
	Username      string    `gorm:"size:64;index;not null" json:"username"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// ValidLevel reports whether level is one of task/todo/gottado.
func ValidLevel(level string) bool {
	_, ok := levelDays[level]
	return ok
}

// ExpirationFor derives the bucket deadline for a level, anchored to the
// given time. Task creation anchors to created_date; a level change anchors
// to the current time.
func ExpirationFor(level string, anchor time.Time) (time.Time, error) {
	days, ok := levelDays[level]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown task level %q", level)
	}
	return anchor.AddDate(0, 0, days), nil
}
