package dto

type ManagerDashboard struct {
	TotalLoads      int64   `json:"total_loads"`
	AcceptedLoads   int64   `json:"accepted_loads"`
	CompletedLoads  int64   `json:"completed_loads"`
	PendingLoads    int64   `json:"pending_loads"`
	RejectedLoads   int64   `json:"rejected_loads"`
	TotalIncome     float64 `json:"total_income"`
	PendingPayments float64 `json:"pending_payments"`
	ActiveDrivers   int64   `json:"active_drivers"`
	OnlineDrivers   int     `json:"online_drivers"`
}

type DriverDashboard struct {
	AssignedLoads   int64   `json:"assigned_loads"`
	AcceptedLoads   int64   `json:"accepted_loads"`
	CompletedLoads  int64   `json:"completed_loads"`
	RejectedLoads   int64   `json:"rejected_loads"`
	TotalEarnings   float64 `json:"total_earnings"`
	PendingEarnings float64 `json:"pending_earnings"`
}

type DashboardResponse struct {
	Success   bool        `json:"success"`
	Dashboard interface{} `json:"dashboard"`
}
