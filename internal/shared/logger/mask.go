package logger

// Example: 1234567890123 -> 12345*****123
func MaskCNIC(cnic string) string {
	if len(cnic) < 9 {
		return "*****"
	}
	return cnic[:5] + "*****" + cnic[len(cnic)-3:]
}

// Example: 03001234567 -> 0300*****67
func MaskContact(contact string) string {
	if len(contact) < 7 {
		return "*****"
	}
	return contact[:4] + "*****" + contact[len(contact)-2:]
}
