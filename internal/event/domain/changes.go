package domain

// Change is one pending change of a series or instance. The variants below are the whole set.
type Change interface{ isChange() }

type SeriesCreated struct{}

// SeriesUpdated holds only the fields that changed.
type SeriesUpdated struct{ Fields SeriesFields }

type SeriesDeactivated struct{}

type InstanceCreated struct{}

// InstanceUpdated holds only the fields that changed.
type InstanceUpdated struct{ Fields InstanceFields }

type InstanceDeactivated struct{}

func (SeriesCreated) isChange()       {}
func (SeriesUpdated) isChange()       {}
func (SeriesDeactivated) isChange()   {}
func (InstanceCreated) isChange()     {}
func (InstanceUpdated) isChange()     {}
func (InstanceDeactivated) isChange() {}
