package payment

// SelectProcessor picks the processor for the next submission attempt
// from the default processor's last known health. Only default health
// is consulted: default is always preferred while healthy because its
// fee rate is lower, and fallback is the blind choice whenever default
// is known bad.
func SelectProcessor(defaultHealth *HealthStatus) ProcessorType {
	if defaultHealth == nil {
		// No data yet, assume healthy until proven otherwise.
		return ProcessorDefault
	}
	if !defaultHealth.Failing {
		return ProcessorDefault
	}
	return ProcessorFallback
}
