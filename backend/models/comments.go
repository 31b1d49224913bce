package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model
	LessonID  uint   `gorm:"index;not null" json:"lessonId"`
	UserEmail string `gorm:"not null" json:"userEmail"`
	UserName  string `json:"userName"`
	UserPhoto string `json:"userPhoto,omitempty"`
	Text      string `gorm:"not null" json:"text"`
}
