package progressbus

import (
	"testing"

	"github.com/google/uuid"
)

func TestRoutingKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	videoID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	got := RoutingKey(userID, videoID)
	want := "user.11111111-1111-1111-1111-111111111111.video.22222222-2222-2222-2222-222222222222"
	if got != want {
		t.Errorf("RoutingKey() = %q, want %q", got, want)
	}
}
