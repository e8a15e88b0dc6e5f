// Package monitor отслеживает выход агента за пределы рабочей зоны
// и время, проведенное вне ее.
package monitor

import (
	"time"

	"github.com/DigitariaWebs/Safyr-sub007/internal/geo"
	"github.com/DigitariaWebs/Safyr-sub007/internal/models"
)

// DefaultDwellThreshold используется, если порог не задан
const DefaultDwellThreshold = 5 * time.Minute

// Clock - источник текущего времени
type Clock interface {
	Now() time.Time
}

// SystemClock читает системные часы
type SystemClock struct{}

// Now возвращает текущее время
func (SystemClock) Now() time.Time { return time.Now() }

// Position - полученная позиция агента. Точность в расчете не участвует.
type Position struct {
	Point    models.GeoPoint
	Accuracy *float64
}

// Input - данные для одной оценки
type Input struct {
	Enabled  bool
	Position *Position
	Zone     *models.WorkZone
	// DwellThreshold <= 0 означает DefaultDwellThreshold
	DwellThreshold      time.Duration
	OnThresholdExceeded func(distanceMeters float64)
}

// State - внутреннее состояние монитора.
// OutsideSince задан только пока агент непрерывно вне зоны,
// ThresholdFired может быть true только вместе с ним.
type State struct {
	Outside        bool
	DistanceMeters *float64
	OutsideSince   *time.Time
	ThresholdFired bool
}

// Status - наблюдаемый результат оценки
type Status struct {
	Outside        bool
	DistanceMeters *float64
	OutsideFor     *time.Duration
}

// Step выполняет один переход состояния. fired равен true ровно в той оценке,
// в которой время вне зоны впервые достигло порога в текущем выходе.
func Step(state State, in Input, now time.Time) (next State, status Status, fired bool) {
	if !in.Enabled || in.Zone == nil {
		return State{}, Status{}, false
	}

	// Без позиции ничего не меняем, даже если выход продолжается
	if in.Position == nil {
		return state, statusOf(state, now), false
	}

	distance := geo.HaversineMeters(in.Zone.Center, in.Position.Point)
	next = state
	next.DistanceMeters = &distance

	if distance <= in.Zone.RadiusMeters {
		next.Outside = false
		next.OutsideSince = nil
		next.ThresholdFired = false
		return next, statusOf(next, now), false
	}

	next.Outside = true
	if next.OutsideSince == nil {
		since := now
		next.OutsideSince = &since
	}

	threshold := in.DwellThreshold
	if threshold <= 0 {
		threshold = DefaultDwellThreshold
	}
	if !next.ThresholdFired && now.Sub(*next.OutsideSince) >= threshold {
		next.ThresholdFired = true
		fired = true
	}
	return next, statusOf(next, now), fired
}

func statusOf(state State, now time.Time) Status {
	status := Status{
		Outside:        state.Outside,
		DistanceMeters: state.DistanceMeters,
	}
	if state.OutsideSince != nil {
		d := now.Sub(*state.OutsideSince)
		status.OutsideFor = &d
	}
	return status
}

// Monitor хранит состояние для одной пары (агент, зона).
// Вызовы Evaluate не должны выполняться конкурентно.
type Monitor struct {
	clock Clock
	state State
}

// New создаёт монитор в начальном состоянии, nil означает системные часы
func New(clock Clock) *Monitor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Monitor{clock: clock}
}

// Evaluate применяет новую оценку и при первом превышении порога
// вызывает OnThresholdExceeded с текущим расстоянием
func (m *Monitor) Evaluate(in Input) Status {
	next, status, fired := Step(m.state, in, m.clock.Now())
	m.state = next
	if fired && in.OnThresholdExceeded != nil {
		in.OnThresholdExceeded(*next.DistanceMeters)
	}
	return status
}

// Status возвращает текущие значения без изменения состояния
func (m *Monitor) Status() Status {
	return statusOf(m.state, m.clock.Now())
}

func (m *Monitor) State() State {
	return m.state
}
