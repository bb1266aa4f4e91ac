package attend

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	uatomic "go.uber.org/atomic"
)

const defaultPollDelay = 50 * time.Millisecond

// worker drives one reader: open the channel, poll for tags, feed the shared
// set, trigger the flush window check. A failing worker terminates on its
// own; its siblings keep polling.
type worker struct {
	cfg       ReaderConfig
	open      func(ReaderConfig) (TagReader, error)
	set       *TagSet
	flush     *FlushCoordinator
	events    *EventBus
	archive   *Archive
	running   *uatomic.Bool
	stop      <-chan struct{}
	pollDelay time.Duration
	log       *logrus.Entry
}

func (w *worker) run(ctx context.Context) {
	reader, err := w.open(w.cfg)
	if err != nil {
		w.log.WithError(err).Error("open reader failed")
		return
	}
	defer reader.Close()
	w.log.Info("reader opened")

	for w.running.Load() {
		batch, err := reader.NextBatch()
		for _, raw := range batch {
			if !w.running.Load() {
				return
			}
			w.observe(raw)
			w.flush.MaybeReconcile(ctx, w.set)
		}
		if err != nil {
			w.log.WithError(err).Error("reader poll failed")
			return
		}
		select {
		case <-w.stop:
			return
		case <-time.After(w.pollDelay):
		}
	}
}

func (w *worker) observe(raw []byte) {
	tag := CanonicalTag(raw)
	if w.set.Insert(tag) {
		tagsObservedCounter.WithLabelValues(w.cfg.Addr).Inc()
		w.log.WithField("tag", tag).Debug("tag observed")
		if w.archive != nil {
			if err := w.archive.RecordSighting(tag, w.cfg.Addr, time.Now()); err != nil {
				w.log.WithError(err).Warn("archive sighting failed")
			}
		}
	}
	w.events.Publish(Event{Kind: EventTagObserved, Tag: tag, Pending: w.set.Len()})
	w.events.Publish(Event{Kind: EventCountChanged, Pending: w.set.Len(), Reconciled: w.flush.Reconciled()})
}
