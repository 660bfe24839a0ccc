// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository and provider interfaces in internal/core. The generated files
// are checked in so tests build without codegen.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockTaskRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(task, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=subscription_repository_mock.go github.com/pushgate/pushgate/internal/core SubscriptionRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=task_repository_mock.go github.com/pushgate/pushgate/internal/core TaskRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=layout_repository_mock.go github.com/pushgate/pushgate/internal/core LayoutRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=push_client_mock.go github.com/pushgate/pushgate/internal/core PushClient

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cycle_lock_mock.go github.com/pushgate/pushgate/internal/core CycleLock
