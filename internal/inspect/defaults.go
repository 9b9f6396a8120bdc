package inspect

// Builtin returns fresh instances of every built-in inspection.
func Builtin() []*Inspection {
	return []*Inspection{
		SyncAccess(),
		MethodNaming(),
		AbstractClass(),
		EmptyClass(),
		ForEach(),
		QuestionableName(),
		ParameterCount(),
		MethodLength(),
		NestingDepth(),
		EmptyCatch(),
	}
}

// DefaultRegistry returns a Registry pre-loaded with the built-in inspections.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(Builtin()...)
	return r
}
