package analysis

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns the magnitude of each frequency bin of data after
// removing its mean, with the bin frequencies in Hz for sample interval dt.
func PowerSpectrum(data []float64, dt float64) (freq, mag []float64) {
	n := len(data)
	if n < 2 || !(dt > 0) {
		return nil, nil
	}

	centered := make([]float64, n)
	copy(centered, data)
	floats.AddConst(-floats.Sum(data)/float64(n), centered)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	freq = make([]float64, len(coeff))
	mag = make([]float64, len(coeff))
	for i, c := range coeff {
		freq[i] = fft.Freq(i) / dt
		mag[i] = cmplx.Abs(c)
	}
	return freq, mag
}

// DominantFrequency is the frequency in Hz of the largest non-zero bin.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	freq, mag := PowerSpectrum(data, dt)
	if len(mag) < 2 {
		return 0, errors.New("analysis: not enough samples")
	}
	i := floats.MaxIdx(mag[1:]) + 1
	return freq[i], nil
}
