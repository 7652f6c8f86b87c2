package commands

// optString is a string flag that remembers whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string {
	if o == nil {
		return ""
	}
	return o.value
}

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// ptr returns a pointer to the value when the flag was given, else nil.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
