package entity

import "time"

// RevenuePoint is a single payment amount reported by the backend.
type RevenuePoint struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// RevenueBucket aggregates revenue for one calendar month (UTC), keyed "YYYY-MM".
type RevenueBucket struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type Revenue struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Total   float64         `json:"total"`
	Buckets []RevenueBucket `json:"buckets"`
}

type Summary struct {
	Courses          int            `json:"courses"`
	PublishedCourses int            `json:"publishedCourses"`
	DraftCourses     int            `json:"draftCourses"`
	Users            int            `json:"users"`
	UsersByRole      map[string]int `json:"usersByRole"`
	BlockedUsers     int            `json:"blockedUsers"`
	Instructors      int            `json:"instructors"`
	Categories       int            `json:"categories"`
	Stories          int            `json:"stories"`
	UnreadAlerts     int            `json:"unreadNotifications"`
}
