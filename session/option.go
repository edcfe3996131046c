package session

type Option interface {
	config(*onDiskSession)
}

func WithCompressor(cmp Compressor) Option {
	return &withCmp{
		cmp: cmp,
	}
}

type withCmp struct {
	cmp Compressor
}

func (opt withCmp) config(sess *onDiskSession) {
	sess.cmp = opt.cmp
}

// WithEncryptor replaces the default AES-GCM encryptor derived from the passphrase.
func WithEncryptor(enc Encryptor) Option {
	return &withEnc{
		enc: enc,
	}
}

type withEnc struct {
	enc Encryptor
}

func (opt withEnc) config(sess *onDiskSession) {
	sess.enc = opt.enc
}

func WithSemaphore(sem *Semaphore) Option {
	return &withSem{
		sem: sem,
	}
}

type withSem struct {
	sem *Semaphore
}

func (opt withSem) config(sess *onDiskSession) {
	sess.sem = opt.sem
}
