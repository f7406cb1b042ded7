package fixedmap

// Stats holds map operation counters.
type Stats struct {
	Inserts    int64
	Updates    int64
	Erases     int64
	Hits       int64
	Misses     int64
	Rejections int64 // Inserts refused because the capacity was exhausted.
	Len        int
	Cap        int
}

// HitRate returns the lookup hit rate as a fraction (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Utilization returns the occupied fraction of the capacity (0.0 to 1.0).
func (s Stats) Utilization() float64 {
	if s.Cap == 0 {
		return 0
	}

	return float64(s.Len) / float64(s.Cap)
}

// Stats returns a snapshot of the operation counters.
func (m *Map[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Inserts:    m.inserts.Load(),
		Updates:    m.updates.Load(),
		Erases:     m.erases.Load(),
		Hits:       m.hits.Load(),
		Misses:     m.misses.Load(),
		Rejections: m.rejections.Load(),
		Len:        m.tree.Len(),
		Cap:        m.tree.Cap(),
	}
}

// add folds o into s. Used by the sharded map to aggregate shard counters.
func (s *Stats) add(o Stats) {
	s.Inserts += o.Inserts
	s.Updates += o.Updates
	s.Erases += o.Erases
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Rejections += o.Rejections
	s.Len += o.Len
	s.Cap += o.Cap
}
