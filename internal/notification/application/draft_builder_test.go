package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
)

func snapshot(status domain.AppointmentStatus) domain.AppointmentSnapshot {
	return domain.AppointmentSnapshot{
		ID:              "A",
		Status:          status,
		AppointmentDate: time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC),
		Customer:        domain.Party{ID: "cust-1", Name: "Ana"},
		Professional:    domain.Party{ID: "pro-1", Name: "Bruno"},
		Service:         domain.Service{Name: "Corte"},
	}
}

func newTestBuilder() *DraftBuilder {
	return NewDraftBuilder(time.UTC, zap.NewNop())
}

func recipientTypes(drafts []domain.Draft) []domain.RecipientType {
	out := make([]domain.RecipientType, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.RecipientType)
	}
	return out
}

func TestBuildFor_Created_NotifiesProfessionalOnly(t *testing.T) {
	drafts := newTestBuilder().BuildFor(domain.AppointmentCreated,
		domain.AppointmentEvent{Appointment: snapshot(domain.StatusPending)})

	require.Len(t, drafts, 1)
	d := drafts[0]
	assert.Equal(t, domain.RecipientProfessional, d.RecipientType)
	assert.Equal(t, "pro-1", d.RecipientID)
	assert.Equal(t, "appointment:A:created:recipient:pro-1", d.DedupKey)
	assert.Equal(t, domain.TypeAppointment, d.Type)
	require.NotNil(t, d.AppointmentID)
	assert.Equal(t, "A", *d.AppointmentID)
	assert.Equal(t, "Ana agendó Corte para el 14/03/2026 17:30.", d.Message)
}

func TestBuildFor_Confirmed(t *testing.T) {
	tests := []struct {
		name   string
		status domain.AppointmentStatus
		want   int
	}{
		{name: "confirmada", status: domain.StatusConfirmed, want: 1},
		{name: "finalizada implica confirmada", status: domain.StatusFinished, want: 1},
		{name: "pendiente no genera", status: domain.StatusPending, want: 0},
		{name: "cancelada no genera", status: domain.StatusCancelled, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := newTestBuilder().BuildFor(domain.AppointmentConfirmed,
				&domain.AppointmentEvent{Appointment: snapshot(tt.status)})

			require.Len(t, drafts, tt.want)
			if tt.want == 1 {
				assert.Equal(t, domain.RecipientCustomer, drafts[0].RecipientType)
				assert.Equal(t, "appointment:A:confirmed:recipient:cust-1", drafts[0].DedupKey)
			}
		})
	}
}

func TestBuildFor_Cancelled_ExcludesCanceller(t *testing.T) {
	tests := []struct {
		name string
		by   domain.Actor
		want []domain.RecipientType
	}{
		{name: "cliente cancela", by: domain.ActorCustomer, want: []domain.RecipientType{domain.RecipientProfessional}},
		{name: "profesional cancela", by: domain.ActorProfessional, want: []domain.RecipientType{domain.RecipientCustomer}},
		{name: "manager cancela", by: domain.ActorManager, want: []domain.RecipientType{domain.RecipientCustomer, domain.RecipientProfessional}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := newTestBuilder().BuildFor(domain.AppointmentCancelled, domain.AppointmentEvent{
				Appointment: snapshot(domain.StatusCancelled),
				CancelledBy: tt.by,
			})

			assert.Equal(t, tt.want, recipientTypes(drafts))
		})
	}
}

func TestBuildFor_Cancelled_RequiresCancelledStatus(t *testing.T) {
	drafts := newTestBuilder().BuildFor(domain.AppointmentCancelled, domain.AppointmentEvent{
		Appointment: snapshot(domain.StatusConfirmed),
		CancelledBy: domain.ActorManager,
	})
	assert.Empty(t, drafts)
}

func TestBuildFor_Finished(t *testing.T) {
	b := newTestBuilder()

	drafts := b.BuildFor(domain.AppointmentFinished, domain.AppointmentEvent{Appointment: snapshot(domain.StatusFinished)})
	require.Len(t, drafts, 1)
	assert.Equal(t, domain.RecipientCustomer, drafts[0].RecipientType)
	assert.Equal(t, "appointment:A:finished:recipient:cust-1", drafts[0].DedupKey)

	assert.Empty(t, b.BuildFor(domain.AppointmentFinished, domain.AppointmentEvent{Appointment: snapshot(domain.StatusConfirmed)}))
}

func TestBuildFor_Birthday(t *testing.T) {
	drafts := newTestBuilder().BuildFor(domain.BirthdayNotify, domain.BirthdayEvent{
		Customer: domain.Party{ID: "cust-9", Name: "Carla"},
		Date:     time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC),
	})

	require.Len(t, drafts, 1)
	d := drafts[0]
	assert.Equal(t, "birthday:cust-9:2026:recipient:cust-9", d.DedupKey)
	assert.Equal(t, domain.TypeSystem, d.Type)
	assert.Nil(t, d.AppointmentID)
	assert.Contains(t, d.Message, "Carla")
}

func TestBuildFor_MissingNamesFallBackToLabels(t *testing.T) {
	appt := snapshot(domain.StatusConfirmed)
	appt.Professional.Name = ""
	appt.Service.Name = "   "
	appt.AppointmentDate = time.Time{}

	drafts := newTestBuilder().BuildFor(domain.AppointmentConfirmed, domain.AppointmentEvent{Appointment: appt})

	require.Len(t, drafts, 1)
	assert.Equal(t, "Tu cita de servicio con profesional el fecha por confirmar fue confirmada.", drafts[0].Message)
}

func TestBuildFor_FormatsDateInSalonLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	b := NewDraftBuilder(loc, zap.NewNop())

	drafts := b.BuildFor(domain.AppointmentCreated, domain.AppointmentEvent{Appointment: snapshot(domain.StatusPending)})

	require.Len(t, drafts, 1)
	assert.Contains(t, drafts[0].Message, "14/03/2026 14:30")
}

func TestBuildFor_MissingRecipientIDSkipsOnlyThatRecipient(t *testing.T) {
	appt := snapshot(domain.StatusCancelled)
	appt.Customer.ID = ""

	drafts := newTestBuilder().BuildFor(domain.AppointmentCancelled, domain.AppointmentEvent{
		Appointment: appt,
		CancelledBy: domain.ActorManager,
	})

	assert.Equal(t, []domain.RecipientType{domain.RecipientProfessional}, recipientTypes(drafts))
}

func TestBuildFor_RenderPanicIsolatedPerRecipient(t *testing.T) {
	// Arrange: la plantilla del cliente explota
	b := newTestBuilder()
	b.messages = map[messageKey]messageFunc{}
	for k, v := range defaultMessages {
		b.messages[k] = v
	}
	b.messages[messageKey{domain.AppointmentCancelled, domain.RecipientCustomer}] = func(v view) (string, string) {
		panic("template roto")
	}

	// Act
	drafts := b.BuildFor(domain.AppointmentCancelled, domain.AppointmentEvent{
		Appointment: snapshot(domain.StatusCancelled),
		CancelledBy: domain.ActorManager,
	})

	// Assert: el profesional igual recibe su draft
	assert.Equal(t, []domain.RecipientType{domain.RecipientProfessional}, recipientTypes(drafts))
}

func TestBuildFor_UnknownEventOrPayload(t *testing.T) {
	b := newTestBuilder()

	assert.Nil(t, b.BuildFor("appointment.rescheduled", domain.AppointmentEvent{Appointment: snapshot(domain.StatusPending)}))
	assert.Nil(t, b.BuildFor(domain.AppointmentCreated, "not a payload"))
	assert.Nil(t, b.BuildFor(domain.AppointmentCreated, (*domain.AppointmentEvent)(nil)))
	assert.Nil(t, b.BuildFor(domain.BirthdayNotify, domain.AppointmentEvent{}))
}

func TestBuildFor_Deterministic(t *testing.T) {
	b := newTestBuilder()
	evt := domain.AppointmentEvent{Appointment: snapshot(domain.StatusCancelled), CancelledBy: domain.ActorManager}

	assert.Equal(t, b.BuildFor(domain.AppointmentCancelled, evt), b.BuildFor(domain.AppointmentCancelled, evt))
}

func TestBuildFor_BirthdayWithoutDateUsesBuilderClock(t *testing.T) {
	// Arrange: 31/12 23:30 en São Paulo ya es 2027 en UTC
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	b := NewDraftBuilder(loc, zap.NewNop())
	b.now = func() time.Time { return time.Date(2027, 1, 1, 2, 30, 0, 0, time.UTC) }

	// Act
	first := b.BuildFor(domain.BirthdayNotify, domain.BirthdayEvent{Customer: domain.Party{ID: "cust-1", Name: "Ana"}})
	second := b.BuildFor(domain.BirthdayNotify, domain.BirthdayEvent{Customer: domain.Party{ID: "cust-1", Name: "Ana"}})

	// Assert
	require.Len(t, first, 1)
	assert.Equal(t, "birthday:cust-1:2026:recipient:cust-1", first[0].DedupKey)
	assert.Equal(t, first, second)
}
