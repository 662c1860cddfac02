// Package model describes the entities a query can range over and how they
// map to physical tables.
//
// Models are written in CUE and compiled with the CUE Go API:
//
//	entity: Employee: {
//	    table: "Employees"
//	    key:   "Id"
//	    columns: {
//	        Id:           int
//	        Name:         string
//	        DepartmentId: int
//	    }
//	    temporal: {history: "EmployeesHistory", start: "ValidFrom", end: "ValidTo"}
//	    navigation: Department: {target: "Department", foreignKey: "DepartmentId"}
//	}
//
// Column types use CUE kinds. Floats are rejected; timestamps are strings.
// Entity, table and column names are NFC-normalized at compile time.
package model
