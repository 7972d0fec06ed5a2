package audit

// Config holds configuration for the audit trail database.
type Config struct {
	// Enabled toggles audit recording; the sync driver runs without a
	// trail when disabled.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" default:"shpysync.db"`
	// Host is the mysql host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the mysql port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the mysql user.
	User string `mapstructure:"user" default:"root"`
	// Password is the mysql password.
	Password string `mapstructure:"password" default:""`
	// Name is the mysql database name.
	Name string `mapstructure:"name" default:"shpysync"`
}
