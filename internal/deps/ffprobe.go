package deps

// FFprobeRequirement describes the stream probe binary. It is optional when
// validation is skipped for the run.
func FFprobeRequirement(command string, skipValidation bool) Requirement {
	return Requirement{
		Name:        "FFprobe",
		Command:     command,
		Description: "Validates stream URLs",
		Optional:    skipValidation,
	}
}

// CheckFFprobe resolves the configured ffprobe binary.
func CheckFFprobe(command string) Status {
	return checkBinary(FFprobeRequirement(command, false))
}
