package integration

import (
	"fmt"
	"time"
)

// TestUser generates unique test user credentials using timestamp
func TestUser(suffix string) (email, phone, password string) {
	ts := time.Now().UnixNano()
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	phone = fmt.Sprintf("555-%03d-%04d", ts%1000, ts%10000)
	password = "TestPassword123!"
	return
}
