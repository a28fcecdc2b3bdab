package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

// DefaultPathCacheSize is the number of per-target distance maps kept by default.
const DefaultPathCacheSize = 16

// DBOptions controls lookup behavior of a TimeCorrectionsDB.
type DBOptions struct {
	// StrictValidity restricts lookups to corrections whose validity period covers
	// the query epoch. Corrections without a validity period never qualify.
	//
	// Multi-hop routes are sized by checking every edge at the query reading
	// relabelled into the edge's scale, not at the epoch reached after the
	// previous hops. Every route of that length is tried with the real epoch,
	// but longer routes are not, so near a validity boundary Convert may fail
	// with ErrNoConversionPath.
	StrictValidity bool

	// PathCacheSize bounds the multi-hop distance cache. Zero disables it.
	PathCacheSize int
}

// Selection is the correction chosen for one directed hop.
type Selection struct {
	Correction entities.TimeCorrection

	// Extrapolated is set when no candidate had a reference epoch at or before the
	// query epoch and the earliest one was used instead.
	Extrapolated bool

	// Inverted is set when Correction was derived from an entry stored in the
	// opposite direction.
	Inverted bool
}

// Conversion is the result of converting an epoch into another time scale.
type Conversion struct {
	Epoch entities.Epoch

	// Path lists the scales visited, source and target included.
	// It is empty when no conversion was needed.
	Path []entities.TimeScale

	Hops         []Selection
	Extrapolated bool
}

// Warning returns an ErrExtrapolatedCorrection advisory when any hop extrapolated,
// nil otherwise. The conversion result is usable either way.
func (c *Conversion) Warning() error {
	if !c.Extrapolated {
		return nil
	}
	for _, hop := range c.Hops {
		if hop.Extrapolated {
			return fmt.Errorf("%w: %s used outside its reference epoch",
				entities.ErrExtrapolatedCorrection, hop.Correction)
		}
	}
	return entities.ErrExtrapolatedCorrection
}

type pairKey struct {
	lo, hi entities.TimeScale
}

func makePairKey(a, b entities.TimeScale) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type dbEntry struct {
	correction entities.TimeCorrection
	seq        uint64
}

type candidate struct {
	correction entities.TimeCorrection
	inverted   bool
	seq        uint64
}

// TimeCorrectionsDB stores corrections between time scales and converts epochs
// across them, directly or through intermediate scales.
//
// Many readers may call LookupDirect and Convert concurrently; writes take an
// exclusive lock.
type TimeCorrectionsDB struct {
	mu        sync.RWMutex
	entries   map[pairKey][]dbEntry
	adjacency map[entities.TimeScale][]entities.TimeScale
	seq       uint64
	count     int

	opts      DBOptions
	distances *lru.Cache
	logger    *zap.Logger
}

// NewTimeCorrectionsDB creates an empty database.
func NewTimeCorrectionsDB(logger *zap.Logger, opts DBOptions) *TimeCorrectionsDB {
	if logger == nil {
		logger = zap.NewNop()
	}

	db := &TimeCorrectionsDB{
		entries:   make(map[pairKey][]dbEntry),
		adjacency: make(map[entities.TimeScale][]entities.TimeScale),
		opts:      opts,
		logger:    logger,
	}

	if opts.PathCacheSize > 0 && !opts.StrictValidity {
		cache, err := lru.New(opts.PathCacheSize)
		if err != nil {
			logger.Warn("path cache disabled", zap.Error(err))
		} else {
			db.distances = cache
		}
	}

	return db
}

// Options returns the options the database was built with.
func (db *TimeCorrectionsDB) Options() DBOptions {
	return db.opts
}

// Insert adds a correction. Entries with equal reference epochs for the same
// pair are all retained; the lookup policy decides between them.
func (db *TimeCorrectionsDB) Insert(correction entities.TimeCorrection) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.insertLocked(correction)
	db.invalidateLocked()

	db.logger.Debug("correction inserted",
		zap.Stringer("source", correction.Source()),
		zap.Stringer("target", correction.Target()),
		zap.Stringer("reference", correction.Reference()),
	)
}

func (db *TimeCorrectionsDB) insertLocked(correction entities.TimeCorrection) {
	db.seq++
	key := makePairKey(correction.Source(), correction.Target())
	list := db.entries[key]

	entry := dbEntry{correction: correction, seq: db.seq}
	i := sort.Search(len(list), func(i int) bool {
		return list[i].correction.Reference().CompareNominal(correction.Reference()) > 0
	})
	list = append(list, dbEntry{})
	copy(list[i+1:], list[i:])
	list[i] = entry

	if len(list) == 1 {
		db.link(key.lo, key.hi)
		db.link(key.hi, key.lo)
	}
	db.entries[key] = list
	db.count++
}

func (db *TimeCorrectionsDB) link(from, to entities.TimeScale) {
	neighbors := db.adjacency[from]
	i := sort.Search(len(neighbors), func(i int) bool { return neighbors[i] >= to })
	if i < len(neighbors) && neighbors[i] == to {
		return
	}
	neighbors = append(neighbors, 0)
	copy(neighbors[i+1:], neighbors[i:])
	neighbors[i] = to
	db.adjacency[from] = neighbors
}

func (db *TimeCorrectionsDB) rebuildAdjacencyLocked() {
	db.adjacency = make(map[entities.TimeScale][]entities.TimeScale)
	for key := range db.entries {
		db.link(key.lo, key.hi)
		db.link(key.hi, key.lo)
	}
}

func (db *TimeCorrectionsDB) invalidateLocked() {
	if db.distances != nil {
		db.distances.Purge()
	}
}

// Len returns the number of stored corrections.
func (db *TimeCorrectionsDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.count
}

// Corrections returns every stored correction in insertion order.
func (db *TimeCorrectionsDB) Corrections() []entities.TimeCorrection {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.correctionsLocked()
}

func (db *TimeCorrectionsDB) correctionsLocked() []entities.TimeCorrection {
	all := make([]dbEntry, 0, db.count)
	for _, list := range db.entries {
		all = append(all, list...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })

	out := make([]entities.TimeCorrection, len(all))
	for i := range all {
		out[i] = all[i].correction
	}
	return out
}

// Pairs returns the linked scale pairs, each with the lower scale first.
func (db *TimeCorrectionsDB) Pairs() [][2]entities.TimeScale {
	db.mu.RLock()
	defer db.mu.RUnlock()

	pairs := make([][2]entities.TimeScale, 0, len(db.entries))
	for key := range db.entries {
		pairs = append(pairs, [2]entities.TimeScale{key.lo, key.hi})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// OutdatePast discards corrections whose reference epoch lies before instant.
// Reference epochs are compared by calendar reading, whatever their scale.
// It returns the number of corrections removed.
func (db *TimeCorrectionsDB) OutdatePast(instant entities.Epoch) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	removed := db.retainLocked(func(c entities.TimeCorrection) bool {
		return c.Reference().CompareNominal(instant) >= 0
	})
	if removed > 0 {
		db.logger.Info("outdated corrections",
			zap.Int("removed", removed),
			zap.Stringer("before", instant),
		)
	}
	return removed
}

// OutdateWeekly discards corrections published more than one week before instant.
func (db *TimeCorrectionsDB) OutdateWeekly(instant entities.Epoch) int {
	return db.OutdatePast(instant.Add(-entities.Week))
}

func (db *TimeCorrectionsDB) retainLocked(keep func(entities.TimeCorrection) bool) int {
	removed := 0
	for key, list := range db.entries {
		kept := list[:0]
		for _, e := range list {
			if keep(e.correction) {
				kept = append(kept, e)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(db.entries, key)
		} else {
			db.entries[key] = kept
		}
	}

	if removed > 0 {
		db.count -= removed
		db.rebuildAdjacencyLocked()
		db.invalidateLocked()
	}
	return removed
}

// Merge inserts every correction of other, in other's insertion order.
func (db *TimeCorrectionsDB) Merge(other *TimeCorrectionsDB) {
	incoming := other.Corrections()

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, c := range incoming {
		db.insertLocked(c)
	}
	db.invalidateLocked()
}

// LookupDirect selects the correction converting source-scale epoch at into
// target, among entries stored for that direction and inverses of entries
// stored the other way. It prefers the latest reference epoch at or before at;
// when every reference lies after at, the earliest is returned as extrapolated.
// Equal references favor stored entries over inverses, then later insertions.
//
// It returns nil when the pair has no usable entry.
func (db *TimeCorrectionsDB) LookupDirect(source, target entities.TimeScale, at entities.Epoch) (*Selection, error) {
	if at.TimeScale() != source {
		return nil, fmt.Errorf("looking up %s-%s: %w: epoch is in %s",
			source, target, entities.ErrScaleMismatch, at.TimeScale())
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.lookupLocked(source, target, at), nil
}

func (db *TimeCorrectionsDB) lookupLocked(source, target entities.TimeScale, at entities.Epoch) *Selection {
	if source == target {
		return nil
	}

	var best, earliest *candidate
	for _, e := range db.entries[makePairKey(source, target)] {
		cand := candidate{correction: e.correction, seq: e.seq}
		if e.correction.Source() != source {
			inv, err := e.correction.Inverse()
			if err != nil {
				db.logger.Debug("skipping correction", zap.Error(err))
				continue
			}
			cand.correction = inv
			cand.inverted = true
		}
		if db.opts.StrictValidity && (cand.correction.Validity() == 0 || !cand.correction.Applies(at)) {
			continue
		}

		if cand.correction.Reference().Compare(at) <= 0 {
			if best == nil || preferLatest(&cand, best) {
				c := cand
				best = &c
			}
		} else if best == nil {
			if earliest == nil || preferEarliest(&cand, earliest) {
				c := cand
				earliest = &c
			}
		}
	}

	switch {
	case best != nil:
		return &Selection{Correction: best.correction, Inverted: best.inverted}
	case earliest != nil:
		return &Selection{Correction: earliest.correction, Inverted: earliest.inverted, Extrapolated: true}
	default:
		return nil
	}
}

// preferLatest reports whether a beats b among references at or before the query.
func preferLatest(a, b *candidate) bool {
	if cmp := a.correction.Reference().Compare(b.correction.Reference()); cmp != 0 {
		return cmp > 0
	}
	return tieBreak(a, b)
}

// preferEarliest reports whether a beats b among references after the query.
func preferEarliest(a, b *candidate) bool {
	if cmp := a.correction.Reference().Compare(b.correction.Reference()); cmp != 0 {
		return cmp < 0
	}
	return tieBreak(a, b)
}

func tieBreak(a, b *candidate) bool {
	if a.inverted != b.inverted {
		return !a.inverted
	}
	return a.seq > b.seq
}

// Convert expresses epoch in the target scale. A direct correction is used
// when one exists; otherwise the shortest chain of corrections is followed,
// preferring at each hop the correction with the most recent reference epoch.
// It fails with ErrNoConversionPath when the scales are not linked, and with
// ErrOverflow when the epoch lies too far from a reference epoch to evaluate.
func (db *TimeCorrectionsDB) Convert(epoch entities.Epoch, target entities.TimeScale) (*Conversion, error) {
	source := epoch.TimeScale()
	if source == target {
		return &Conversion{Epoch: epoch}, nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	if sel := db.lookupLocked(source, target, epoch); sel != nil {
		return db.follow(epoch, target, []Selection{*sel})
	}

	dist := db.distancesTo(target, epoch)
	if _, ok := dist[source]; !ok {
		return nil, fmt.Errorf("converting %s to %s: %w", epoch, target, entities.ErrNoConversionPath)
	}

	hops, err := db.descend(epoch, target, dist, make([]Selection, 0, dist[source]))
	if err != nil {
		return nil, fmt.Errorf("converting %s to %s: %w", epoch, target, err)
	}
	return db.follow(epoch, target, hops)
}

// descend walks the distance layers from current's scale down to target. At
// each step the neighbors are tried from the most recent selected correction
// down, so a hop that leads nowhere falls back to another route of the same
// length.
func (db *TimeCorrectionsDB) descend(current entities.Epoch, target entities.TimeScale, dist map[entities.TimeScale]int, hops []Selection) ([]Selection, error) {
	from := current.TimeScale()
	if from == target {
		return hops, nil
	}

	options := make([]Selection, 0, len(db.adjacency[from]))
	for _, next := range db.adjacency[from] {
		if d, ok := dist[next]; !ok || d != dist[from]-1 {
			continue
		}
		if sel := db.lookupLocked(from, next, current); sel != nil {
			options = append(options, *sel)
		}
	}
	// Neighbors are visited in scale order, so ties keep the lowest scale.
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Correction.Reference().Compare(options[j].Correction.Reference()) > 0
	})

	for _, sel := range options {
		next, err := applyHop(sel, current)
		if err != nil {
			return nil, err
		}
		found, err := db.descend(next, target, dist, append(hops, sel))
		if err == nil {
			return found, nil
		}
		if !errors.Is(err, entities.ErrNoConversionPath) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: no usable correction from %s", entities.ErrNoConversionPath, from)
}

// follow applies hops in order and assembles the conversion result.
func (db *TimeCorrectionsDB) follow(epoch entities.Epoch, target entities.TimeScale, hops []Selection) (*Conversion, error) {
	conv := &Conversion{
		Path: make([]entities.TimeScale, 0, len(hops)+1),
		Hops: hops,
	}
	conv.Path = append(conv.Path, epoch.TimeScale())

	current := epoch
	for _, hop := range hops {
		next, err := applyHop(hop, current)
		if err != nil {
			return nil, fmt.Errorf("converting %s to %s: %w", epoch, target, err)
		}
		current = next
		conv.Path = append(conv.Path, current.TimeScale())
		conv.Extrapolated = conv.Extrapolated || hop.Extrapolated
	}
	conv.Epoch = current

	return conv, nil
}

// applyHop applies a selected correction to an epoch in its source scale.
// Selections always match the epoch's scale, so a mismatch means the database
// is corrupted; overflow far from the reference epoch is returned.
func applyHop(sel Selection, epoch entities.Epoch) (entities.Epoch, error) {
	next, err := sel.Correction.Apply(epoch)
	if errors.Is(err, entities.ErrScaleMismatch) {
		panic(fmt.Sprintf("services: corrupted corrections database: %v", err))
	}
	return next, err
}

// distancesTo returns hop counts from every reachable scale to target.
// Outside strict mode the result only depends on the graph shape and is cached.
func (db *TimeCorrectionsDB) distancesTo(target entities.TimeScale, epoch entities.Epoch) map[entities.TimeScale]int {
	if db.opts.StrictValidity {
		return db.bfs(target, func(a, b entities.TimeScale) bool {
			return db.lookupLocked(a, b, epoch.Relabel(a)) != nil
		})
	}

	if db.distances != nil {
		if cached, ok := db.distances.Get(target); ok {
			return cached.(map[entities.TimeScale]int)
		}
	}

	dist := db.bfs(target, nil)
	if db.distances != nil {
		db.distances.Add(target, dist)
	}
	return dist
}

// bfs runs a breadth-first search outward from target. usable, when set,
// filters edges; it receives the edge in conversion direction.
func (db *TimeCorrectionsDB) bfs(target entities.TimeScale, usable func(from, to entities.TimeScale) bool) map[entities.TimeScale]int {
	dist := map[entities.TimeScale]int{target: 0}
	queue := []entities.TimeScale{target}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, prev := range db.adjacency[node] {
			if _, seen := dist[prev]; seen {
				continue
			}
			if usable != nil && !usable(prev, node) {
				continue
			}
			dist[prev] = dist[node] + 1
			queue = append(queue, prev)
		}
	}

	return dist
}
