package dto

type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterPending   TaskFilter = "pending"
	TaskFilterCompleted TaskFilter = "completed"
)

type ListTasksRequest struct {
	Filter TaskFilter `query:"filter" validate:"omitempty,oneof=all pending completed"`
}

type TaskListItem struct {
	TaskResponse
	PatientName string `json:"patient_name"`
	SessionDate string `json:"session_date"`
}
