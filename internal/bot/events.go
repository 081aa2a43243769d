package bot

import "sync"

// EventKind — тип события от шлюза
type EventKind int

const (
	EventReady EventKind = iota + 1
	EventCommand
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Event — событие; Command заполнен только для EventCommand
type Event struct {
	Kind    EventKind
	Command *CommandEvent
}

type Handler func(Event)

// Dispatcher — подписка обработчиков на типы событий
// шлюзы только публикуют, ядро только подписывается
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind][]Handler)}
}

func (d *Dispatcher) On(kind EventKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Emit — вызвать всех подписчиков; порядок не гарантируется
func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	hs := append([]Handler(nil), d.handlers[ev.Kind]...)
	d.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}
