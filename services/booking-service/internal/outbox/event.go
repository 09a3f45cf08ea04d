package outbox

// Topic per event type; the type string is the topic name.
const (
	EventAppointmentCreated       = "booking.appointment.created.v1"
	EventAppointmentStatusChanged = "booking.appointment.status_changed.v1"
)

// Event is what a handler hands to the outbox inside its transaction.
// AggregateID keys the Kafka message, so every event of one appointment
// lands on the same partition in write order.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

func NewAppointmentCreated(appointmentID string, payload []byte) Event {
	return Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     EventAppointmentCreated,
		Payload:       payload,
	}
}

func NewAppointmentStatusChanged(appointmentID string, payload []byte) Event {
	return Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     EventAppointmentStatusChanged,
		Payload:       payload,
	}
}
