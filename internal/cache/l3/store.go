package l3

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/internal/cache"
)

// Store is the engine's L3 persistent tile store, satisfying spec §6's
// get/put/delete/count/iter_oldest_k/clear contract.
type Store interface {
	Get(key cache.Key) (*cache.Entry, bool)
	Put(key cache.Key, entry *cache.Entry)
	Delete(key cache.Key)
	Count() int
	IterOldestK(k int) []cache.Key
	Clear()
	Close()
}

type diskLocation struct {
	offset int64
	length int32
}

type ioRequest struct {
	key  cache.Key
	blob []byte
	hash uint64
}

// DiskStore is the default Store implementation: tile blobs are appended
// to a single file by a dedicated I/O goroutine; concurrent readers use a
// lock-free atomic.Pointer[os.File] + ReadAt (pread), exactly as the
// teacher's DiskTileStore does for encoded raster tiles.
type DiskStore struct {
	mu          sync.RWMutex
	index       map[cache.Key]diskLocation
	lastAccess  map[cache.Key]int64      // entry StoredAtMs, for oldest-first cleanup
	byHash      map[uint64]diskLocation  // content dedup (uniform tiles collapse)
	keysForHash map[uint64][]cache.Key

	readFile atomic.Pointer[os.File]
	dir      string

	ioCh      chan ioRequest
	ioWg      sync.WaitGroup
	closeOnce sync.Once

	countCap  int
	bytesCap  int64
	totalBytes int64
}

// Config configures a DiskStore.
type Config struct {
	Dir      string // directory for the spill file; defaults to os.TempDir()
	CountCap int    // default 2048 (spec §6 l3_cache_tiles)
	BytesCap int64  // default 500 MiB (spec §6 l3_bytes_cap)
}

// NewDiskStore creates a DiskStore and starts its I/O goroutine.
func NewDiskStore(cfg Config) *DiskStore {
	dir := cfg.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	countCap := cfg.CountCap
	if countCap <= 0 {
		countCap = 2048
	}
	bytesCap := cfg.BytesCap
	if bytesCap <= 0 {
		bytesCap = 500 * 1024 * 1024
	}

	s := &DiskStore{
		index:       make(map[cache.Key]diskLocation),
		lastAccess:  make(map[cache.Key]int64),
		byHash:      make(map[uint64]diskLocation),
		keysForHash: make(map[uint64][]cache.Key),
		dir:         dir,
		ioCh:        make(chan ioRequest, 256),
		countCap:    countCap,
		bytesCap:    bytesCap,
	}
	s.ioWg.Add(1)
	go s.ioLoop()
	return s
}

// Put enqueues key/entry for async write-through to disk. Content-identical
// entries (the common uniform-interior-tile case) share one stored blob.
func (s *DiskStore) Put(key cache.Key, entry *cache.Entry) {
	hash := contentHash(entry)

	s.mu.Lock()
	if loc, ok := s.byHash[hash]; ok {
		s.index[key] = loc
		s.keysForHash[hash] = append(s.keysForHash[hash], key)
		s.lastAccess[key] = entry.StoredAtMs
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	blob := encodeBlob(key, entry)
	s.ioCh <- ioRequest{key: key, blob: blob, hash: hash}

	s.mu.Lock()
	s.lastAccess[key] = entry.StoredAtMs
	s.mu.Unlock()
}

// Get reads key's blob via lock-free ReadAt, or returns (nil,false) if
// absent.
func (s *DiskStore) Get(key cache.Key) (*cache.Entry, bool) {
	s.mu.RLock()
	loc, ok := s.index[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	f := s.readFile.Load()
	if f == nil {
		return nil, false
	}
	buf := make([]byte, loc.length)
	if _, err := f.ReadAt(buf, loc.offset); err != nil {
		logrus.WithError(err).Warn("l3: read failed")
		return nil, false
	}
	_, entry, err := decodeBlob(buf)
	if err != nil {
		logrus.WithError(err).Warn("l3: decode failed")
		return nil, false
	}

	s.mu.Lock()
	s.lastAccess[key] = entry.StoredAtMs
	s.mu.Unlock()

	return entry, true
}

// Delete removes key from the index. The underlying blob stays in the
// append-only spill file; its space is not reclaimed.
func (s *DiskStore) Delete(key cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.index, key)
	delete(s.lastAccess, key)
}

// Count returns the number of indexed keys (distinct tile identities, not
// distinct stored blobs).
func (s *DiskStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// IterOldestK returns up to k keys with the smallest recorded StoredAtMs
// timestamp.
func (s *DiskStore) IterOldestK(k int) []cache.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pair = struct {
		key cache.Key
		ts  int64
	}
	all := make([]pair, 0, len(s.lastAccess))
	for key, ts := range s.lastAccess {
		all = append(all, pair{key, ts})
	}
	sortPairsByTimestamp(all)

	if k > len(all) {
		k = len(all)
	}
	out := make([]cache.Key, k)
	for i := 0; i < k; i++ {
		out[i] = all[i].key
	}
	return out
}

func sortPairsByTimestamp(all []struct {
	key cache.Key
	ts  int64
}) {
	// Simple insertion sort over every indexed key (not just the k that
	// IterOldestK returns), O(n^2) in the number of indexed keys.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].ts < all[j-1].ts; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
}

// Clear drops the entire index. The spill file itself is left alone here
// (Close removes it), so existing readers in flight are unaffected,
// matching spec §4.7's "L3 optional" cascade.
func (s *DiskStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = make(map[cache.Key]diskLocation)
	s.lastAccess = make(map[cache.Key]int64)
	s.byHash = make(map[uint64]diskLocation)
	s.keysForHash = make(map[uint64][]cache.Key)
}

// Close stops the I/O goroutine and removes the spill file.
func (s *DiskStore) Close() {
	s.closeOnce.Do(func() {
		close(s.ioCh)
		s.ioWg.Wait()
		if f := s.readFile.Swap(nil); f != nil {
			name := f.Name()
			f.Close()
			os.Remove(name)
		}
	})
}

func (s *DiskStore) ioLoop() {
	defer s.ioWg.Done()

	var file *os.File
	var offset int64

	for req := range s.ioCh {
		if file == nil {
			f, err := os.CreateTemp(s.dir, "mandelcore-l3-*.blob")
			if err != nil {
				logrus.WithError(err).Error("l3: failed to create spill file, tile dropped")
				continue
			}
			file = f
			s.readFile.Store(f)
		}

		n, err := file.Write(req.blob)
		if err != nil {
			logrus.WithError(err).Error("l3: write error, tile dropped")
			continue
		}

		loc := diskLocation{offset: offset, length: int32(n)}

		s.mu.Lock()
		s.index[req.key] = loc
		s.byHash[req.hash] = loc
		s.keysForHash[req.hash] = append(s.keysForHash[req.hash], req.key)
		s.totalBytes += int64(n)
		s.mu.Unlock()

		offset += int64(n)
	}
}
