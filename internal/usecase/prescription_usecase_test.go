package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthcare-booking-api/internal/delivery/dto"
	"healthcare-booking-api/internal/domain/entity"
	"healthcare-booking-api/internal/service"

	"github.com/google/uuid"
)

type fakePrescriptionRepo struct {
	byID      map[uuid.UUID]*entity.Prescription
	createErr error
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{byID: map[uuid.UUID]*entity.Prescription{}}
}

func (r *fakePrescriptionRepo) Create(ctx context.Context, p *entity.Prescription) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakePrescriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Prescription, error) {
	return r.byID[id], nil
}

func (r *fakePrescriptionRepo) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*entity.Prescription, error) {
	for _, p := range r.byID {
		if p.AppointmentID == appointmentID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePrescriptionRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Prescription, error) {
	var out []entity.Prescription
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type prescriptionFixture struct {
	usecase       PrescriptionUsecase
	prescriptions *fakePrescriptionRepo
	appts         *fakeAppointmentRepo
	notifier      *fakeNotificationService
}

func newPrescriptionFixture() *prescriptionFixture {
	f := &prescriptionFixture{
		prescriptions: newFakePrescriptionRepo(),
		appts:         newFakeAppointmentRepo(),
		notifier:      &fakeNotificationService{},
	}
	f.usecase = NewPrescriptionUsecase(testLogger(), f.prescriptions, f.appts, f.notifier)
	return f
}

func completedAppointment(f *prescriptionFixture, doctorID uuid.UUID) *entity.Appointment {
	start := time.Now().UTC().Add(-48 * time.Hour)
	appt := entity.NewAppointment(uuid.New(), doctorID, nil, start, start.Add(30*time.Minute), entity.AppointmentTypeOnline)
	appt.Status = entity.AppointmentStatusCompleted
	f.appts.put(appt)
	return appt
}

func TestIssuePrescription(t *testing.T) {
	doctorID := uuid.New()
	doctorActor := Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: doctorID}

	req := func(apptID uuid.UUID) *dto.CreatePrescriptionRequest {
		return &dto.CreatePrescriptionRequest{
			AppointmentID: apptID,
			Diagnosis:     "viral fever",
			Medications: entity.Medications{
				{Name: "Paracetamol", Dosage: "500mg", Frequency: "3x daily", Duration: "5 days"},
			},
			Advice: "rest and fluids",
		}
	}

	t.Run("issues and links back", func(t *testing.T) {
		f := newPrescriptionFixture()
		appt := completedAppointment(f, doctorID)

		p, err := f.usecase.Issue(context.Background(), doctorActor, req(appt.ID))
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if p.DoctorID != doctorID || p.UserID != appt.UserID {
			t.Fatal("prescription parties not taken from the appointment")
		}
		stored := f.appts.stored(appt.ID)
		if stored.PrescriptionID == nil || *stored.PrescriptionID != p.ID {
			t.Fatal("appointment not linked back to the prescription")
		}
		if !f.notifier.has(service.EventPrescriptionIssued) {
			t.Fatal("prescription notification not emitted")
		}
	})

	t.Run("other doctor cannot prescribe", func(t *testing.T) {
		f := newPrescriptionFixture()
		appt := completedAppointment(f, doctorID)

		other := Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: uuid.New()}
		if _, err := f.usecase.Issue(context.Background(), other, req(appt.ID)); !errors.Is(err, ErrNotAppointmentsDoctor) {
			t.Fatalf("got %v, want ErrNotAppointmentsDoctor", err)
		}
	})

	t.Run("appointment not completed", func(t *testing.T) {
		f := newPrescriptionFixture()
		appt := completedAppointment(f, doctorID)
		appt.Status = entity.AppointmentStatusConfirmed
		f.appts.put(appt)

		if _, err := f.usecase.Issue(context.Background(), doctorActor, req(appt.ID)); !errors.Is(err, ErrAppointmentNotCompleted) {
			t.Fatalf("got %v, want ErrAppointmentNotCompleted", err)
		}
	})

	t.Run("one prescription per appointment", func(t *testing.T) {
		f := newPrescriptionFixture()
		appt := completedAppointment(f, doctorID)

		if _, err := f.usecase.Issue(context.Background(), doctorActor, req(appt.ID)); err != nil {
			t.Fatalf("first issue failed: %v", err)
		}
		if _, err := f.usecase.Issue(context.Background(), doctorActor, req(appt.ID)); !errors.Is(err, ErrPrescriptionExists) {
			t.Fatalf("got %v, want ErrPrescriptionExists", err)
		}
	})
}

func TestPrescriptionAccess(t *testing.T) {
	doctorID := uuid.New()
	f := newPrescriptionFixture()
	appt := completedAppointment(f, doctorID)

	issuer := Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: doctorID}
	p, err := f.usecase.Issue(context.Background(), issuer, &dto.CreatePrescriptionRequest{
		AppointmentID: appt.ID,
		Diagnosis:     "migraine",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tests := []struct {
		name    string
		actor   Actor
		wantErr error
	}{
		{"patient", Actor{UserID: appt.UserID, Role: entity.RolePatient}, nil},
		{"issuing doctor", issuer, nil},
		{"admin", Actor{UserID: uuid.New(), Role: entity.RoleAdmin}, nil},
		{"stranger", Actor{UserID: uuid.New(), Role: entity.RolePatient}, ErrPrescriptionAccessDenied},
		{"other doctor", Actor{UserID: uuid.New(), Role: entity.RoleDoctor, DoctorID: uuid.New()}, ErrPrescriptionAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.usecase.GetByID(context.Background(), tt.actor, p.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			_, err = f.usecase.GetForAppointment(context.Background(), tt.actor, appt.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("by appointment: got %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unknown prescription", func(t *testing.T) {
		_, err := f.usecase.GetByID(context.Background(), issuer, uuid.New())
		if !errors.Is(err, ErrPrescriptionNotFound) {
			t.Fatalf("got %v, want ErrPrescriptionNotFound", err)
		}
	})
}
