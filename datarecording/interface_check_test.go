package datarecording

// This file verifies that both backends implement the DataRecorder interface.
// If this compiles, the interface is correctly implemented

var _ DataRecorder = (*ClickHouseRecorder)(nil)
var _ DataRecorder = (*sqliteWriter)(nil)
