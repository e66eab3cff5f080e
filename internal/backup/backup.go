// Package backup implements whole-database snapshots: a dependency-ordered
// export of all operational tables to CSV files inside a single ZIP archive,
// and the reverse restore path with type coercion and optional wipe.
package backup

// Tables is the fixed table list in dependency order, leaves first. Export
// and restore both walk this exact order so that restored rows always satisfy
// foreign keys without a dependency resolver. Login accounts and other
// infrastructure tables are deliberately absent.
var Tables = []string{
	"brands",
	"categories",
	"sectors",
	"statuses",
	"conditions",
	"employees",
	"suppliers",
	"models",
	"purchases",
	"assets",
	"movements",
	"maintenances",
}

// IsBackupTable reports whether name is part of the snapshot table list.
func IsBackupTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// ArchiveName is the deterministic file name of a generated snapshot.
const ArchiveName = "officeflow_full_backup.zip"

// TableCount reports how many rows a table contributed to an export or
// received during a restore.
type TableCount struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}
