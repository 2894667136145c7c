package eventgraph

import (
	"log/slog"

	"github.com/kotonoha-nlp/eventgraph/knp"
)

// stid addresses a tag by serial sentence id and tag id.
type stid struct {
	ssid int
	tid  int
}

// builder is the per-build context: serial counters and lookup tables.
// A fresh builder is created for every Build call so that independent
// builds never leak ids into each other.
type builder struct {
	cfg Config
	log *slog.Logger

	evid int // next serial event id

	stidTag    map[stid]*knp.Tag
	stidBid    map[stid]int
	evidEvent  map[int]*Event
	stidEvent  map[stid]*Event
	ssidEvents map[int][]*Event
}

func newBuilder(cfg Config, log *slog.Logger) *builder {
	if log == nil {
		log = slog.Default()
	}
	return &builder{
		cfg:        cfg,
		log:        log,
		stidTag:    make(map[stid]*knp.Tag),
		stidBid:    make(map[stid]int),
		evidEvent:  make(map[int]*Event),
		stidEvent:  make(map[stid]*Event),
		ssidEvents: make(map[int][]*Event),
	}
}

// indexPhrases builds the (ssid, tid) lookup tables in one pass over the
// parser output. Built once per build and reused by every later stage.
func (b *builder) indexPhrases(analyses []*knp.Sentence) {
	for ssid, analysis := range analyses {
		for _, bnst := range analysis.Bunsetsu {
			for _, tag := range bnst.Tags {
				b.stidTag[stid{ssid, tag.ID}] = tag
				b.stidBid[stid{ssid, tag.ID}] = bnst.ID
			}
		}
	}
}

// indexEvents builds the event lookup tables after segmentation.
func (b *builder) indexEvents(events []*Event) {
	for _, event := range events {
		b.evidEvent[event.ID] = event
		b.ssidEvents[event.SSID] = append(b.ssidEvents[event.SSID], event)
		for tid := event.Start.ID; tid <= event.End.ID; tid++ {
			b.stidEvent[stid{event.SSID, tid}] = event
		}
	}
}

func (b *builder) tag(ssid, tid int) *knp.Tag {
	return b.stidTag[stid{ssid, tid}]
}

func (b *builder) bid(ssid, tid int) int {
	if bid, ok := b.stidBid[stid{ssid, tid}]; ok {
		return bid
	}
	return -1
}
