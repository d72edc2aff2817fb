package async

import (
	"context"
	"time"
)

// Debounce events fired over a channel by a specified duration, ensuring no event
// is handled until a certain interval of time has passed.
func Debounce(ctx context.Context, interval time.Duration, eventsChan <-chan interface{}, handler func(interface{})) {
	for event := range eventsChan {
	loop:
		for {
			timer := time.NewTimer(interval)
			select {
			case event = <-eventsChan:
			case <-timer.C:
				handler(event)
				break loop
			case <-ctx.Done():
				timer.Stop()
				return
			}
			timer.Stop()
		}
	}
}
