package env

// Prefix is the env variable prefix for fxboard flags
const Prefix = "FXBOARD"
