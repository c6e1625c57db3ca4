package env

// Prefix is the environment variable prefix for all command flags,
// ex. TWDRATES_LISTEN
const Prefix = "TWDRATES"
