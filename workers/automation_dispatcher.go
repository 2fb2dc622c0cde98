// workers/automation_dispatcher.go
package workers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"sync"

	"influencer-battle/utils"
)

// AutomationDispatcher delivers webhook notifications in the background.
// Each notification gets a single GET attempt; failures are logged and
// dropped.
type AutomationDispatcher struct {
	webhookURL string
	httpClient *http.Client
	queue      chan url.Values
	wg         sync.WaitGroup
}

func NewAutomationDispatcher(webhookURL string, buffer int) *AutomationDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &AutomationDispatcher{
		webhookURL: webhookURL,
		httpClient: utils.HTTPClient,
		queue:      make(chan url.Values, buffer),
	}
}

// Enqueue schedules params for delivery. It never blocks and reports false
// when the notification was dropped.
func (d *AutomationDispatcher) Enqueue(params url.Values) bool {
	if d.webhookURL == "" {
		return false
	}
	select {
	case d.queue <- params:
		return true
	default:
		log.Printf("[Automation] ⚠️ queue full, dropping %s %s", params.Get("target_table"), params.Get("record_id"))
		return false
	}
}

func (d *AutomationDispatcher) Start(ctx context.Context) {
	if d.webhookURL == "" {
		log.Println("⚠️  AUTOMATION_WEBHOOK_URL not set, automation notifications disabled")
		return
	}
	log.Println("🔁 Starting Automation Dispatcher…")
	d.wg.Add(1)
	go d.run(ctx)
}

// Wait blocks until the run loop has exited.
func (d *AutomationDispatcher) Wait() {
	d.wg.Wait()
}

func (d *AutomationDispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case params := <-d.queue:
			d.send(ctx, params)
		case <-ctx.Done():
			log.Println("🛑 Automation Dispatcher stopped")
			return
		}
	}
}

func (d *AutomationDispatcher) send(ctx context.Context, params url.Values) {
	target, err := url.Parse(d.webhookURL)
	if err != nil {
		log.Printf("[Automation] ❌ invalid webhook url: %v", err)
		return
	}
	q := target.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		log.Printf("[Automation] ❌ build request: %v", err)
		return
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		log.Printf("[Automation] ⚠️ webhook call failed (non-blocking): %v", err)
		return
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		log.Printf("[Automation] ⚠️ webhook returned %d: %s", resp.StatusCode, utils.ReadErrorBody(resp.Body))
		return
	}
	log.Printf("[Automation] ✅ delivered [%s] ID: %s", params.Get("target_table"), params.Get("record_id"))
}
