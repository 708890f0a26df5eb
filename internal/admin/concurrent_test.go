// ABOUTME: Stress tests for many browser sessions driving the admin at once.
// ABOUTME: Checks session isolation and that no create is lost or duplicated.

package admin

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
)

func TestConcurrentSessions_CreateAndBrowse(t *testing.T) {
	env := newTestEnv(t)

	numBrowsers := 20
	createsPerBrowser := 5
	var wg sync.WaitGroup
	var errorCount int32

	for i := 0; i < numBrowsers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			b := env.browser(t)
			b.do("GET", "/r/room", nil)
			for j := 0; j < createsPerBrowser; j++ {
				b.do("GET", "/r/room/new", nil)
				form := url.Values{"building": {fmt.Sprintf("B%d", id)}, "room_num": {fmt.Sprint(j)}}
				if rr := b.do("POST", "/r/room/submit", form); rr.Code != http.StatusOK {
					atomic.AddInt32(&errorCount, 1)
				}
				b.do("POST", "/r/room/search", url.Values{"q": {fmt.Sprintf("B%d", id)}})
			}
		}(i)
	}
	wg.Wait()

	if errorCount > 0 {
		t.Errorf("Expected 0 failed submits, got %d", errorCount)
	}
	if got, want := len(env.backend.rows("room")), numBrowsers*createsPerBrowser; got != want {
		t.Errorf("backend rooms = %d, want %d", got, want)
	}
	if n := env.sessions.Len(); n != numBrowsers {
		t.Errorf("sessions = %d, want %d", n, numBrowsers)
	}
}

func TestConcurrentSessions_KeepOwnQuery(t *testing.T) {
	env := newTestEnv(t)
	env.backend.seed("dept", map[string]any{"name": "Math"}, map[string]any{"name": "Music"}, map[string]any{"name": "Physics"})

	queries := []string{"math", "music", "physics", ""}
	var wg sync.WaitGroup
	for _, q := range queries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := env.browser(t)
			b.do("GET", "/r/dept", nil)
			for i := 0; i < 10; i++ {
				b.do("POST", "/r/dept/search", url.Values{"q": {q}})
			}
			body := b.do("GET", "/r/dept/panel", nil).Body.String()
			assertContains(t, body, fmt.Sprintf(`placeholder="Search..." value="%s"`, q))
		}()
	}
	wg.Wait()
}
