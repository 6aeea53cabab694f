// Package mocks provides gomock doubles for the core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockJobRepository(ctrl)
//	repo.EXPECT().ClaimNext(gomock.Any()).Return(job, nil)
package mocks

// Job store: Create, GetByID, ClaimNext, Finalize, ExistsForDedup, List, Count, Stats, Requeue
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/target/competitions-api/internal/core JobRepository

// Retention cleanup: DeleteOldJobs, FailStaleProcessingJobs
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=reaper_repository_mock.go github.com/target/competitions-api/internal/core ReaperRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=organizer_repository_mock.go github.com/target/competitions-api/internal/core OrganizerRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=event_repository_mock.go github.com/target/competitions-api/internal/core EventRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=registration_repository_mock.go github.com/target/competitions-api/internal/core RegistrationRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=outbox_repository_mock.go github.com/target/competitions-api/internal/core OutboxRepository

// Reminder scheduling: JobScheduler.Tick, LockRepository.TryAcquire/Release
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=scheduler_mock.go github.com/target/competitions-api/internal/core JobScheduler,LockRepository
