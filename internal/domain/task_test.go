package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	ownerID := uuid.New()

	task, err := NewTask(ownerID, ModelFast, 720*time.Hour)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.OwnerID != ownerID {
		t.Errorf("Expected owner %s, got %s", ownerID, task.OwnerID)
	}

	if task.Status != TaskStatusStarting {
		t.Errorf("Expected status %s, got %s", TaskStatusStarting, task.Status)
	}

	if task.InputLocation != "input/"+task.ID.String() {
		t.Errorf("Expected input location derived from id, got %s", task.InputLocation)
	}

	if task.OutputLocation != "" {
		t.Errorf("Expected empty output location, got %s", task.OutputLocation)
	}

	if task.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if task.ExpiresAt == nil {
		t.Fatal("Expected ExpiresAt to be set")
	}
	if got := task.ExpiresAt.Sub(task.CreatedAt); got != 720*time.Hour {
		t.Errorf("Expected expiration 720h after creation, got %s", got)
	}

	// Zero expiration means the task never expires
	task, err = NewTask(ownerID, ModelHighQuality, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.ExpiresAt != nil {
		t.Errorf("Expected nil ExpiresAt, got %v", task.ExpiresAt)
	}

	// Invalid owner
	_, err = NewTask(uuid.Nil, ModelFast, 0)
	if !errors.Is(err, ErrEmptyTaskOwnerID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskOwnerID, err)
	}

	// Invalid model
	_, err = NewTask(ownerID, Model("turbo"), 0)
	if !errors.Is(err, ErrInvalidModel) {
		t.Errorf("Expected error %v, got %v", ErrInvalidModel, err)
	}
}

func TestTaskValidate(t *testing.T) {
	id := uuid.New()
	validTask := Task{
		ID:            id,
		OwnerID:       uuid.New(),
		Model:         ModelFast,
		Status:        TaskStatusStarting,
		InputLocation: InputLocation(id),
		CreatedAt:     time.Now().UTC(),
	}

	if err := validTask.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidTask := validTask
	invalidTask.ID = uuid.Nil
	if err := invalidTask.Validate(); !errors.Is(err, ErrEmptyTaskID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskID, err)
	}

	invalidTask = validTask
	invalidTask.OwnerID = uuid.Nil
	if err := invalidTask.Validate(); !errors.Is(err, ErrEmptyTaskOwnerID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyTaskOwnerID, err)
	}

	invalidTask = validTask
	invalidTask.Status = TaskStatus("queued")
	if err := invalidTask.Validate(); !errors.Is(err, ErrInvalidTaskStatus) {
		t.Errorf("Expected error %v, got %v", ErrInvalidTaskStatus, err)
	}

	invalidTask = validTask
	invalidTask.InputLocation = ""
	if err := invalidTask.Validate(); !errors.Is(err, ErrEmptyInputLocation) {
		t.Errorf("Expected error %v, got %v", ErrEmptyInputLocation, err)
	}

	// Output location requires succeeded status
	invalidTask = validTask
	invalidTask.OutputLocation = OutputLocation(id)
	if err := invalidTask.Validate(); !errors.Is(err, ErrOutputWithoutSuccess) {
		t.Errorf("Expected error %v, got %v", ErrOutputWithoutSuccess, err)
	}

	succeededTask := validTask
	succeededTask.Status = TaskStatusSucceeded
	succeededTask.OutputLocation = OutputLocation(id)
	if err := succeededTask.Validate(); err != nil {
		t.Errorf("Expected no error for succeeded task with output, got %v", err)
	}

	// Error message requires failed status
	invalidTask = validTask
	invalidTask.ErrorMessage = "document was unreadable"
	if err := invalidTask.Validate(); !errors.Is(err, ErrErrorWithoutFailure) {
		t.Errorf("Expected error %v, got %v", ErrErrorWithoutFailure, err)
	}

	failedTask := validTask
	failedTask.Status = TaskStatusFailed
	failedTask.ErrorMessage = "document was unreadable"
	if err := failedTask.Validate(); err != nil {
		t.Errorf("Expected no error for failed task with message, got %v", err)
	}
}

func TestTaskStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskStatusStarting, TaskStatusProcessing, true},
		{TaskStatusStarting, TaskStatusSucceeded, false},
		{TaskStatusStarting, TaskStatusFailed, false},
		{TaskStatusProcessing, TaskStatusSucceeded, true},
		{TaskStatusProcessing, TaskStatusFailed, true},
		{TaskStatusProcessing, TaskStatusStarting, false},
		{TaskStatusSucceeded, TaskStatusProcessing, false},
		{TaskStatusSucceeded, TaskStatusFailed, false},
		{TaskStatusFailed, TaskStatusProcessing, false},
		{TaskStatusFailed, TaskStatusSucceeded, false},
	}

	for _, tc := range tests {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	if TaskStatusStarting.IsTerminal() || TaskStatusProcessing.IsTerminal() {
		t.Error("Expected starting and processing to be non-terminal")
	}
	if !TaskStatusSucceeded.IsTerminal() || !TaskStatusFailed.IsTerminal() {
		t.Error("Expected succeeded and failed to be terminal")
	}
}

func TestParseModel(t *testing.T) {
	tests := []struct {
		input   string
		want    Model
		wantErr bool
	}{
		{"fast", ModelFast, false},
		{"Fast", ModelFast, false},
		{"FAST", ModelFast, false},
		{" fast ", ModelFast, false},
		{"high_quality", ModelHighQuality, false},
		{"HighQuality", ModelHighQuality, false},
		{"highquality", ModelHighQuality, false},
		{"", "", true},
		{"turbo", "", true},
		{"high quality", "", true},
	}

	for _, tc := range tests {
		got, err := ParseModel(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("ParseModel(%q): expected ErrInvalidModel, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseModel(%q): unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseModel(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}
