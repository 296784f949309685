package dto

// DashboardResponse carries the admin overview counters.
type DashboardResponse struct {
	Users         int64 `json:"users"`
	ParkingSpots  int64 `json:"parking_spots"`
	ReportedSpots int64 `json:"reported_spots"`
	PendingSpots  int64 `json:"pending_spots"`
	ApprovedSpots int64 `json:"approved_spots"`
	RejectedSpots int64 `json:"rejected_spots"`
	Ratings       int64 `json:"ratings"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}
