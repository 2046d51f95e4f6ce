package businessflow

import (
	"context"
	"log"
	"sync"

	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"gorm.io/gorm"
)

// Click is the raw per-visit payload handed from the redirect path to the recorder
type Click struct {
	ShortLinkID uint
	IPAddress   string
	UserAgent   string
	Referer     string
}

// ClickRecorder persists click events asynchronously so the redirect path never waits
// on analytics writes. Enqueue never blocks; when the queue is full the click is dropped
// and counted. Start launches the worker and returns a stop function that drains the
// queue before returning.
type ClickRecorder interface {
	Enqueue(click Click) bool
	Start(ctx context.Context) func()
}

type ClickRecorderImpl struct {
	clickRepo  repository.ClickEventRepository
	shortRepo  repository.ShortLinkRepository
	uaParser   services.UserAgentParser
	geo        services.GeoIPResolver
	db         *gorm.DB
	queue      chan Click
	onRecorded func()
	onDropped  func()
}

// NewClickRecorder creates a new click recorder instance. The counters may be nil.
func NewClickRecorder(
	clickRepo repository.ClickEventRepository,
	shortRepo repository.ShortLinkRepository,
	uaParser services.UserAgentParser,
	geo services.GeoIPResolver,
	db *gorm.DB,
	queueSize int,
	onRecorded func(),
	onDropped func(),
) ClickRecorder {
	if queueSize < 1 {
		queueSize = 1024
	}
	return &ClickRecorderImpl{
		clickRepo:  clickRepo,
		shortRepo:  shortRepo,
		uaParser:   uaParser,
		geo:        geo,
		db:         db,
		queue:      make(chan Click, queueSize),
		onRecorded: onRecorded,
		onDropped:  onDropped,
	}
}

func (r *ClickRecorderImpl) Enqueue(click Click) bool {
	select {
	case r.queue <- click:
		return true
	default:
		if r.onDropped != nil {
			r.onDropped()
		}
		return false
	}
}

func (r *ClickRecorderImpl) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				r.drain()
				return
			case click := <-r.queue:
				r.record(click)
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// drain flushes whatever is still queued at shutdown without blocking on new work
func (r *ClickRecorderImpl) drain() {
	for {
		select {
		case click := <-r.queue:
			r.record(click)
		default:
			return
		}
	}
}

// record runs outside the request context on purpose; a canceled redirect request must
// not cancel the analytics write
func (r *ClickRecorderImpl) record(click Click) {
	ctx := context.Background()

	info := r.uaParser.Parse(click.UserAgent)
	loc := r.geo.Resolve(click.IPAddress)

	event := &models.ClickEvent{
		ShortLinkID: click.ShortLinkID,
		IPAddress:   click.IPAddress,
		DeviceType:  info.DeviceType,
		Browser:     info.Browser,
		OS:          info.OS,
		Country:     loc.Country,
		City:        loc.City,
	}
	if ua := utils.Truncate(click.UserAgent, utils.MaxUserAgentLength); ua != "" {
		event.UserAgent = &ua
	}
	if ref := utils.Truncate(click.Referer, utils.MaxRefererLength); ref != "" {
		event.Referer = &ref
	}

	err := repository.WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		if err := r.clickRepo.Save(txCtx, event); err != nil {
			return err
		}
		return r.shortRepo.IncrementClicks(txCtx, click.ShortLinkID)
	})
	if err != nil {
		// Click loss is acceptable; redirects must keep working
		log.Printf("click recorder: failed to record click for link %d: %v", click.ShortLinkID, err)
		return
	}
	if r.onRecorded != nil {
		r.onRecorded()
	}
}
