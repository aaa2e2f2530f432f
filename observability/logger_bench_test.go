package observability

import (
	"bytes"
	"testing"
)

func BenchmarkLogger_PropertyWrite(b *testing.B) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, InfoLevel)

	b.ReportAllocs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("Set {Property} = {Value} at {Location}", "OutputPath", `bin\Debug\`, "ConfigurationSpecific")
	}
}

func BenchmarkLogger_Debug_Filtered(b *testing.B) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, InfoLevel)

	b.ReportAllocs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("Evaluated {Property} for {Configuration}|{Platform}", "Optimize", "Debug", "AnyCPU")
	}
}

func BenchmarkLogger_ForProject(b *testing.B) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, InfoLevel)

	b.ReportAllocs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.ForContext("Project", "Demo").Info("Saved {File}", "Demo.csproj")
	}
}

func BenchmarkNullLogger(b *testing.B) {
	logger := NewNullLogger()

	b.ReportAllocs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("Set {Property} = {Value}", "AssemblyName", "Demo")
	}
}
