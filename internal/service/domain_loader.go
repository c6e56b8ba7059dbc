package service

import (
	"context"

	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/snapshot"
)

type teacherLister interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type classLister interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type subjectLister interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type timeslotLister interface {
	ListAll(ctx context.Context) ([]models.TimeSlot, error)
}

type availabilityLister interface {
	ListAll(ctx context.Context) ([]models.TeacherAvailability, error)
}

type qualificationLister interface {
	ListAll(ctx context.Context) ([]models.TeacherSubject, error)
}

type requirementLister interface {
	ListAll(ctx context.Context) ([]models.ClassRequirement, error)
}

// DomainLoader aggregates the per-entity repositories into one snapshot
// input. Pins and the reference date are the caller's business.
type DomainLoader struct {
	teachers       teacherLister
	classes        classLister
	subjects       subjectLister
	timeslots      timeslotLister
	availabilities availabilityLister
	qualifications qualificationLister
	requirements   requirementLister
}

// NewDomainLoader wires the loader.
func NewDomainLoader(
	teachers teacherLister,
	classes classLister,
	subjects subjectLister,
	timeslots timeslotLister,
	availabilities availabilityLister,
	qualifications qualificationLister,
	requirements requirementLister,
) *DomainLoader {
	return &DomainLoader{
		teachers:       teachers,
		classes:        classes,
		subjects:       subjects,
		timeslots:      timeslots,
		availabilities: availabilities,
		qualifications: qualifications,
		requirements:   requirements,
	}
}

// LoadDomain reads every entity set.
func (l *DomainLoader) LoadDomain(ctx context.Context) (*snapshot.Input, error) {
	teachers, err := l.teachers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := l.classes.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := l.subjects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	timeslots, err := l.timeslots.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	availabilities, err := l.availabilities.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	qualifications, err := l.qualifications.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	requirements, err := l.requirements.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &snapshot.Input{
		Teachers:       teachers,
		Classes:        classes,
		Subjects:       subjects,
		TimeSlots:      timeslots,
		Availabilities: availabilities,
		Qualifications: qualifications,
		Requirements:   requirements,
	}, nil
}
