// teacrypt encrypts and decrypts files with the XTEA/CBC stream from
// this module. Key and IV come from a YAML config or an interactive
// prompt; -genkey prints fresh random material to share out of band.
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/leifwalsh/tea/cipher"
	"github.com/leifwalsh/tea/config"
	"github.com/leifwalsh/tea/stream"
)

func main() {
	configPath := flag.String("c", "", "path to a yaml config holding key and iv")
	decrypt := flag.Bool("d", false, "decrypt instead of encrypt")
	output := flag.String("o", "", "output file (default: input plus or minus .tea)")
	genkey := flag.Bool("genkey", false, "generate a random key and iv, print them, and exit")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *genkey {
		if err := printKeyMaterial(); err != nil {
			log.Fatalf("generate key material: %v", err)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-d] [-c config.yaml] [-o out] file\n", os.Args[0])
		os.Exit(2)
	}
	in := flag.Arg(0)

	key, iv, err := keyMaterial(*configPath)
	if err != nil {
		log.Fatalf("load key material: %v", err)
	}

	out := *output
	if out == "" {
		if *decrypt {
			out = strings.TrimSuffix(in, ".tea")
			if out == in {
				out = in + ".plain"
			}
		} else {
			out = in + ".tea"
		}
	}

	if *decrypt {
		err = decryptFile(in, out, key, iv)
	} else {
		err = encryptFile(in, out, key, iv)
	}
	if err != nil {
		log.Fatalf("%s: %v", in, err)
	}
	log.Infof("wrote %s", out)
}

func printKeyMaterial() error {
	material := make([]byte, cipher.KeySize+cipher.BlockSize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return err
	}
	fmt.Printf("key: %s\n", hex.EncodeToString(material[:cipher.KeySize]))
	fmt.Printf("iv:  %s\n", hex.EncodeToString(material[cipher.KeySize:]))
	return nil
}

func keyMaterial(path string) (cipher.Key, cipher.Block, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return cipher.Key{}, cipher.Block{}, err
		}
		key, err := cfg.CipherKey()
		if err != nil {
			return cipher.Key{}, cipher.Block{}, err
		}
		iv, err := cfg.CipherIV()
		if err != nil {
			return cipher.Key{}, cipher.Block{}, err
		}
		return key, iv, nil
	}

	rawKey, err := prompt("key (32 hex digits): ", cipher.KeySize)
	if err != nil {
		return cipher.Key{}, cipher.Block{}, err
	}
	rawIV, err := prompt("iv (16 hex digits): ", cipher.BlockSize)
	if err != nil {
		return cipher.Key{}, cipher.Block{}, err
	}
	key, err := cipher.KeyFromBytes(rawKey)
	if err != nil {
		return cipher.Key{}, cipher.Block{}, err
	}
	iv, err := cipher.IVFromBytes(rawIV)
	if err != nil {
		return cipher.Key{}, cipher.Block{}, err
	}
	return key, iv, nil
}

// prompt reads hex key material from the terminal without echoing it.
func prompt(msg string, want int) ([]byte, error) {
	fmt.Fprint(os.Stderr, msg)
	line, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(string(line))
	if err != nil {
		return nil, fmt.Errorf("not valid hex: %w", err)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("want %d bytes, got %d", want, len(raw))
	}
	return raw, nil
}

func encryptFile(in, out string, key cipher.Key, iv cipher.Block) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	w := stream.NewWriter(bufio.NewWriter(dst), key, iv)
	n, err := io.Copy(w, src)
	if err != nil {
		dst.Close()
		return err
	}
	// Close appends the padded final block and flushes the bufio layer.
	if err := w.Close(); err != nil {
		dst.Close()
		return err
	}
	log.Debugf("encrypted %d plaintext bytes", n)
	return dst.Close()
}

func decryptFile(in, out string, key cipher.Key, iv cipher.Block) error {
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	r := stream.NewReader(bufio.NewReader(src), key, iv)
	n, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		return err
	}
	log.Debugf("recovered %d plaintext bytes", n)
	return dst.Close()
}
