package serverconfig

type Config struct {
	MySQL   MySQLConfig   `yaml:"mysql" mapstructure:"mysql"`
	MongoDB MongoDBConfig `yaml:"mongodb" mapstructure:"mongodb"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Sim     SimConfig     `yaml:"sim" mapstructure:"sim"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

// StoreConfig 选择持久化实现：mysql / mongodb / memory（开发调试）。
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// SimConfig 是世界模拟参数。全部显式注入引擎，决不读全局可变状态。
type SimConfig struct {
	TickTimeS        int     `yaml:"tick_time_s" mapstructure:"tick_time_s"`             // tick 周期（秒）
	Speed            float64 `yaml:"speed" mapstructure:"speed"`                         // 世界速度倍率（产量/建造/行军）
	WinnerDampening  float64 `yaml:"winner_dampening" mapstructure:"winner_dampening"`   // 胜方损失衰减系数
	RaidLootShare    float64 `yaml:"raid_loot_share" mapstructure:"raid_loot_share"`     // 掠夺型攻击可带走的资源比例
	CancelWindow     float64 `yaml:"cancel_window" mapstructure:"cancel_window"`         // 行军可撤回窗口（0~1，占行程比例）
	QueueParallelism int     `yaml:"queue_parallelism" mapstructure:"queue_parallelism"` // 每村每类队列同时进行的任务数
	VillageBudgetMS  int     `yaml:"village_budget_ms" mapstructure:"village_budget_ms"` // 单村处理时间预算（毫秒）
	VillageParallel  int     `yaml:"village_parallel" mapstructure:"village_parallel"`   // 同时处理的村庄数上限
	TickBudgetMS     int     `yaml:"tick_budget_ms" mapstructure:"tick_budget_ms"`       // 单个 tick 总时长上限（毫秒）
	SnowflakeNodeID  int64   `yaml:"snowflake_node_id" mapstructure:"snowflake_node_id"` // id 生成节点
}
